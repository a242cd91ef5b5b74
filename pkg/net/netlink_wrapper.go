package net

import (
	"github.com/vishvananda/netlink"
)

// NetlinkProvider is a wrapper interface over vishvananda/netlink lib
type NetlinkProvider interface {
	// LinkByName returns Link by netdev name
	LinkByName(name string) (netlink.Link, error)
	// LinkByIndex returns Link by netdev index
	LinkByIndex(index int) (netlink.Link, error)
	// LinkList returns all links of the current network namespace
	LinkList() ([]netlink.Link, error)

	// RouteAdd adds a route, fails if the route exists
	RouteAdd(route *netlink.Route) error
	// RouteReplace adds or replaces a route
	RouteReplace(route *netlink.Route) error
	// RouteDel deletes a route
	RouteDel(route *netlink.Route) error
	// RouteListFiltered lists routes of family matching filter fields selected by filterMask
	RouteListFiltered(family int, filter *netlink.Route, filterMask uint64) ([]netlink.Route, error)
}

// NewNetlinkProviderImpl creates a new NetlinkProviderImpl
func NewNetlinkProviderImpl() *NetlinkProviderImpl {
	return &NetlinkProviderImpl{}
}

type NetlinkProviderImpl struct{}

// LinkByName implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

// LinkByIndex implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkByIndex(index int) (netlink.Link, error) {
	return netlink.LinkByIndex(index)
}

// LinkList implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

// RouteAdd implements NetlinkProvider interface
func (n NetlinkProviderImpl) RouteAdd(route *netlink.Route) error {
	return netlink.RouteAdd(route)
}

// RouteReplace implements NetlinkProvider interface
func (n NetlinkProviderImpl) RouteReplace(route *netlink.Route) error {
	return netlink.RouteReplace(route)
}

// RouteDel implements NetlinkProvider interface
func (n NetlinkProviderImpl) RouteDel(route *netlink.Route) error {
	return netlink.RouteDel(route)
}

// RouteListFiltered implements NetlinkProvider interface
func (n NetlinkProviderImpl) RouteListFiltered(
	family int, filter *netlink.Route, filterMask uint64) ([]netlink.Route, error) {
	return netlink.RouteListFiltered(family, filter, filterMask)
}

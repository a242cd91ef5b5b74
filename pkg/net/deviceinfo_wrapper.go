package net

import (
	"github.com/safchain/ethtool"
)

// DriverInfo holds driver information of a netdev
type DriverInfo struct {
	Driver    string
	Version   string
	FwVersion string
	BusInfo   string
}

// DeviceInfoProvider is a wrapper interface on top of safchain/ethtool
type DeviceInfoProvider interface {
	// DriverInfo returns driver information of netdev
	DriverInfo(ifName string) (DriverInfo, error)
}

// NewDeviceInfoProviderImpl creates a new DeviceInfoProviderImpl
func NewDeviceInfoProviderImpl() *DeviceInfoProviderImpl {
	return &DeviceInfoProviderImpl{}
}

type DeviceInfoProviderImpl struct{}

// DriverInfo implements DeviceInfoProvider interface.
// A new handle is opened per call so that the socket belongs to the
// network namespace the caller currently runs in.
func (d *DeviceInfoProviderImpl) DriverInfo(ifName string) (DriverInfo, error) {
	e, err := ethtool.NewEthtool()
	if err != nil {
		return DriverInfo{}, err
	}
	defer e.Close()

	info, err := e.DriverInfo(ifName)
	if err != nil {
		return DriverInfo{}, err
	}
	return DriverInfo{
		Driver:    info.Driver,
		Version:   info.Version,
		FwVersion: info.FwVersion,
		BusInfo:   info.BusInfo,
	}, nil
}

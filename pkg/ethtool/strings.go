package ethtool

import (
	"fmt"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

const stringsType = "if_strings"

// stringSet returns the string set of the interface. The set is kept in the
// cache for the group so that names and indexes stay consistent until commit.
func (a *Agent) stringSet(gid uint32, ifName string, set types.StringSet) ([]string, error) {
	name := fmt.Sprintf("%s.%d", ifName, set)
	obj, err := a.shadow(stringsType, name, gid, func(obj *cache.Object) error {
		count, err := a.eth.GetStringSetLen(ifName, set)
		if err != nil {
			return a.native(err, types.CmdGSSetInfo, ifName)
		}
		if count == 0 {
			obj.Payload = []string{}
			return nil
		}
		strs, err := a.eth.GetStrings(ifName, set, count)
		if err != nil {
			return a.native(err, types.CmdGStrings, ifName)
		}
		obj.Payload = strs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj.Payload.([]string), nil
}

func stringIndex(strs []string, name string) (int, error) {
	for i, s := range strs {
		if s == name {
			return i, nil
		}
	}
	return -1, errcode.New(errcode.NotFound, "no string %q", name)
}

package ethtool

import (
	"fmt"
	"strconv"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

const (
	rulesType = "if_rx_cls_rules"
	ruleType  = "if_rx_cls_rule"
)

// rxRules is the rule table view of one interface
type rxRules struct {
	tableSize uint32
	specLoc   bool
	locations sets.Set[uint32]
}

func ruleObjectName(ifName, loc string) string {
	return fmt.Sprintf("%s.%s", ifName, loc)
}

func (a *Agent) rxRulesNode() *cfgtree.Node {
	fields := make([]*cfgtree.Node, 0, len(flowFields))
	for i := range flowFields {
		mask := cfgtree.NewNodeBuilder("mask").WithGet(a.ruleFieldGet).WithSet(a.ruleFieldSet).Build()
		fields = append(fields, cfgtree.NewNodeBuilder(flowFields[i].name).
			WithGet(a.ruleFieldGet).
			WithSet(a.ruleFieldSet).
			WithChildren(mask).
			Build())
	}

	rule := cfgtree.NewNodeBuilder("rule").
		WithList(a.ruleList).
		WithAdd(a.ruleAdd).
		WithDel(a.ruleDel).
		WithCommit(a.ruleCommit).
		WithChildren(
			cfgtree.NewNodeBuilder("rx_queue").WithGet(a.ruleRxQueueGet).WithSet(a.ruleRxQueueSet).Build(),
			cfgtree.NewNodeBuilder("rss_context").WithGet(a.ruleRSSContextGet).WithSet(a.ruleRSSContextSet).Build(),
			cfgtree.NewNodeBuilder("flow_spec").
				WithGet(a.ruleFlowSpecGet).
				WithSet(a.ruleFlowSpecSet).
				WithChildren(fields...).
				Build(),
		).
		Build()

	return cfgtree.NewNodeBuilder("rx_rules").
		WithChildren(
			cfgtree.NewNodeBuilder("table_size").WithGet(a.rulesTableSizeGet).Build(),
			cfgtree.NewNodeBuilder("spec_loc").WithGet(a.rulesSpecLocGet).Build(),
			cfgtree.NewNodeBuilder("last_added").WithGet(a.rulesLastAddedGet).Build(),
			rule,
		).
		Build()
}

func (a *Agent) rulesMaterialize(obj *cache.Object) error {
	ifName := obj.Name
	count, data, err := a.eth.GetRxRuleCount(ifName)
	if err != nil {
		return a.native(err, types.CmdGRxClsRlCnt, ifName)
	}
	tableSize, locs, err := a.eth.GetRxRuleLocations(ifName, count)
	if err != nil {
		return a.native(err, types.CmdGRxClsRlAll, ifName)
	}
	obj.Payload = &rxRules{
		tableSize: tableSize,
		specLoc:   uint32(data)&types.RxClsLocSpecial != 0,
		locations: sets.New(locs...),
	}
	return nil
}

func (a *Agent) rxRules(gid uint32, ifName string) (*rxRules, error) {
	obj, err := a.shadow(rulesType, ifName, gid, a.rulesMaterialize)
	if err != nil {
		return nil, err
	}
	return obj.Payload.(*rxRules), nil
}

// rulesInfo maps a missing classifier to not-found
func (a *Agent) rulesInfo(req *cfgtree.Request) (*rxRules, error) {
	rules, err := a.rxRules(req.GroupID, req.IfName())
	if errcode.Is(err, errcode.NotSupported) {
		return nil, errcode.New(errcode.NotFound, "%s has no Rx classification rules", req.IfName())
	}
	return rules, err
}

func (a *Agent) rulesTableSizeGet(req *cfgtree.Request) (string, error) {
	rules, err := a.rulesInfo(req)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(rules.tableSize), 10), nil
}

func (a *Agent) rulesSpecLocGet(req *cfgtree.Request) (string, error) {
	rules, err := a.rulesInfo(req)
	if err != nil {
		return "", err
	}
	return formatBool(rules.specLoc), nil
}

func (a *Agent) rulesLastAddedGet(req *cfgtree.Request) (string, error) {
	if a.rxAdd.lastAdded < 0 || a.rxAdd.ifName != req.IfName() {
		return "", errcode.New(errcode.NotFound, "no rule was added on %s", req.IfName())
	}
	return strconv.FormatInt(a.rxAdd.lastAdded, 10), nil
}

func (a *Agent) ruleList(req *cfgtree.Request) ([]string, error) {
	rules, err := a.rxRules(req.GroupID, req.IfName())
	if errcode.Is(err, errcode.NotSupported) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, rules.locations.Len())
	for _, loc := range sets.List(rules.locations) {
		names = append(names, strconv.FormatUint(uint64(loc), 10))
	}
	return names, nil
}

// ruleShadow returns the rule addressed by req, reading an existing rule
// from the kernel on first use
func (a *Agent) ruleShadow(req *cfgtree.Request, forSet bool) (*rxRule, error) {
	ifName := req.IfName()
	locName := req.Inst("rule")
	materialize := func(obj *cache.Object) error {
		loc, err := strconv.ParseUint(locName, 10, 32)
		if err != nil {
			return errcode.New(errcode.NotFound, "no rule %q on %s", locName, ifName)
		}
		rules, err := a.rulesInfo(req)
		if err != nil {
			return err
		}
		if !rules.locations.Has(uint32(loc)) {
			return errcode.New(errcode.NotFound, "no rule at %d on %s", loc, ifName)
		}
		nfc, err := a.eth.GetRxRule(ifName, uint32(loc))
		if err != nil {
			return a.native(err, types.CmdGRxClsRule, ifName)
		}
		obj.Payload = rxRuleFromNative(nfc)
		return nil
	}

	var obj *cache.Object
	var err error
	if forSet {
		obj, err = a.shadowForSet(ruleType, ruleObjectName(ifName, locName), req.GroupID, materialize)
	} else {
		obj, err = a.shadow(ruleType, ruleObjectName(ifName, locName), req.GroupID, materialize)
	}
	if err != nil {
		return nil, err
	}
	return obj.Payload.(*rxRule), nil
}

func (a *Agent) ruleAdd(req *cfgtree.Request, value string) error {
	ifName := req.IfName()
	if a.rxAdd.inProgress {
		if a.cache.Find(ruleType, a.rxAdd.objName, a.rxAdd.gid) != nil {
			return errcode.New(errcode.InProgress, "rule addition on %s is not committed yet", a.rxAdd.ifName)
		}
		// the shadow was dropped without a commit
		a.log.V(4).Info("forget stale rule addition", "rule", a.rxAdd.objName, "group", a.rxAdd.gid)
	}
	locName := req.Inst("rule")
	loc, err := parseLocation(locName)
	if err != nil {
		return err
	}
	if isSpecialLocation(loc) {
		rules, err := a.rulesInfo(req)
		if err != nil {
			return err
		}
		if !rules.specLoc {
			return errcode.New(errcode.NotSupported, "%s does not choose rule locations", ifName)
		}
	}
	rule := &rxRule{location: loc, rssContext: -1}
	// the value may name the flow type, otherwise it is set through flow_spec
	if value != "" {
		if _, lerr := parseLocation(value); lerr != nil {
			if rule.flowType, err = parseFlowType(value); err != nil {
				return err
			}
		}
	}
	objName := ruleObjectName(ifName, locName)
	if _, err := a.cache.Add(ruleType, objName, value, req.GroupID, rule, nil); err != nil {
		return err
	}
	a.rxAdd = rxAddState{inProgress: true, ifName: ifName, lastAdded: -1, objName: objName, gid: req.GroupID}
	a.log.V(3).Info("add Rx rule", "interface", ifName, "location", locName, "group", req.GroupID)
	return nil
}

func (a *Agent) ruleDel(req *cfgtree.Request) error {
	ifName := req.IfName()
	locName := req.Inst("rule")
	loc, err := strconv.ParseUint(locName, 10, 32)
	if err != nil {
		return errcode.New(errcode.Invalid, "invalid rule location %q", locName)
	}
	if obj := a.cache.Find(ruleType, ruleObjectName(ifName, locName), req.GroupID); obj != nil {
		a.cache.Free(obj)
	}
	defer a.dropRules(ifName, req.GroupID)
	return a.native(a.eth.DeleteRxRule(ifName, uint32(loc)), types.CmdSRxClsRlDel, ifName)
}

// dropRules forgets the rule table of the group so that it is read again
// after the kernel table changed
func (a *Agent) dropRules(ifName string, gid uint32) {
	if obj := a.cache.Find(rulesType, ifName, gid); obj != nil {
		a.cache.Free(obj)
	}
}

func (a *Agent) ruleCommit(gid uint32, oid cfgtree.OID) error {
	ifName := oid.Inst(InterfaceNode)
	name := ruleObjectName(ifName, oid.Inst("rule"))
	obj := a.cache.Find(ruleType, name, gid)
	if obj == nil {
		a.log.V(4).Info("nothing to commit", "rule", name, "group", gid)
		return nil
	}
	defer a.cache.Free(obj)

	adding := a.rxAdd.inProgress && a.rxAdd.objName == name && a.rxAdd.gid == gid
	if adding {
		a.rxAdd.inProgress = false
	}
	if obj.Action == cache.ActionGet {
		return nil
	}

	rule := obj.Payload.(*rxRule)
	if rule.flowType == 0 {
		return errcode.New(errcode.Invalid, "rule %s has no flow type", name)
	}
	nfc, err := rule.toNative()
	if err != nil {
		return err
	}
	loc, err := a.eth.InsertRxRule(ifName, nfc)
	a.dropRules(ifName, gid)
	if err != nil {
		return a.native(err, types.CmdSRxClsRlIns, ifName)
	}
	if adding {
		a.rxAdd.lastAdded = int64(loc)
	}
	a.log.V(3).Info("inserted Rx rule", "rule", rule.String(), "location", loc, "interface", ifName)
	return nil
}

func (a *Agent) ruleRxQueueGet(req *cfgtree.Request) (string, error) {
	rule, err := a.ruleShadow(req, false)
	if err != nil {
		return "", err
	}
	return formatRxQueue(rule.rxQueue), nil
}

func (a *Agent) ruleRxQueueSet(req *cfgtree.Request, value string) error {
	q, err := parseRxQueue(value)
	if err != nil {
		return err
	}
	rule, err := a.ruleShadow(req, true)
	if err != nil {
		return err
	}
	rule.rxQueue = q
	return nil
}

func (a *Agent) ruleRSSContextGet(req *cfgtree.Request) (string, error) {
	rule, err := a.ruleShadow(req, false)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(rule.rssContext, 10), nil
}

func (a *Agent) ruleRSSContextSet(req *cfgtree.Request, value string) error {
	ctx, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ctx < -1 || ctx > int64(^uint32(0)) {
		return errcode.New(errcode.Invalid, "invalid RSS context %q", value)
	}
	rule, err := a.ruleShadow(req, true)
	if err != nil {
		return err
	}
	rule.rssContext = ctx
	return nil
}

func (a *Agent) ruleFlowSpecGet(req *cfgtree.Request) (string, error) {
	rule, err := a.ruleShadow(req, false)
	if err != nil {
		return "", err
	}
	return formatFlowType(rule.flowType)
}

// ruleFlowSpecSet changes the flow type; field banks are cleared since
// their layout depends on it
func (a *Agent) ruleFlowSpecSet(req *cfgtree.Request, value string) error {
	ft, err := parseFlowType(value)
	if err != nil {
		return err
	}
	rule, err := a.ruleShadow(req, true)
	if err != nil {
		return err
	}
	if rule.flowType != ft {
		rule.flowType = ft
		rule.values = ruleFields{}
		rule.masks = ruleFields{}
	}
	return nil
}

func (a *Agent) ruleField(req *cfgtree.Request, forSet bool) (*flowField, *ruleFields, *rxRule, error) {
	name, mask, err := fieldFromOID(req.OID)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := lookupFlowField(name)
	if err != nil {
		return nil, nil, nil, err
	}
	rule, err := a.ruleShadow(req, forSet)
	if err != nil {
		return nil, nil, nil, err
	}
	if !f.appliesTo(rule.flowType) {
		ft, _ := formatFlowType(rule.flowType)
		return nil, nil, nil, errcode.New(errcode.Invalid, "field %s is not used by flow type %q", name, ft)
	}
	if mask {
		return f, &rule.masks, rule, nil
	}
	return f, &rule.values, rule, nil
}

func (a *Agent) ruleFieldGet(req *cfgtree.Request) (string, error) {
	f, bank, rule, err := a.ruleField(req, false)
	if err != nil {
		return "", err
	}
	return f.format(bank, rule.flowType), nil
}

func (a *Agent) ruleFieldSet(req *cfgtree.Request, value string) error {
	f, bank, rule, err := a.ruleField(req, true)
	if err != nil {
		return err
	}
	return f.parse(bank, rule.flowType, value)
}

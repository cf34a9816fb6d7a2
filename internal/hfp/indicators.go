package hfp

import (
	"fmt"
	"strings"
)

// Indicator AG 状态指示器，取值即 +CIND / +CIEV 中的位置索引（从 1 开始）
type Indicator int

const (
	IndicatorService Indicator = iota + 1
	IndicatorCall
	IndicatorCallSetup
	IndicatorCallHeld
	IndicatorSignal
	IndicatorRoam
	IndicatorBattChg
)

// IndicatorCount 指示器个数
const IndicatorCount = 7

// callsetup 取值
const (
	CallSetupNone     = 0
	CallSetupIncoming = 1
	CallSetupDialing  = 2
	CallSetupAlerting = 3
)

// callheld 取值
const (
	CallHeldNone          = 0
	CallHeldActiveAndHeld = 1
	CallHeldOnly          = 2
)

func (i Indicator) String() string {
	switch i {
	case IndicatorService:
		return "service"
	case IndicatorCall:
		return "call"
	case IndicatorCallSetup:
		return "callsetup"
	case IndicatorCallHeld:
		return "callheld"
	case IndicatorSignal:
		return "signal"
	case IndicatorRoam:
		return "roam"
	case IndicatorBattChg:
		return "battchg"
	default:
		return fmt.Sprintf("indicator(%d)", int(i))
	}
}

// Valid 判断索引是否为已定义指示器
func (i Indicator) Valid() bool { return i >= IndicatorService && i <= IndicatorBattChg }

// Range 返回指示器的合法取值区间
func (i Indicator) Range() (lo, hi int) {
	switch i {
	case IndicatorCallSetup:
		return 0, 3
	case IndicatorCallHeld:
		return 0, 2
	case IndicatorSignal, IndicatorBattChg:
		return 0, 5
	default:
		return 0, 1
	}
}

// InRange 判断取值是否在合法区间内
func (i Indicator) InRange(v int) bool {
	lo, hi := i.Range()
	return v >= lo && v <= hi
}

// IndicatorDescriptors AT+CIND=? 的应答体：名称与取值范围按位置顺序排列
const IndicatorDescriptors = `+CIND: ("service",(0,1)),("call",(0,1)),("callsetup",(0,3)),("callheld",(0,2)),("signal",(0,5)),("roam",(0,1)),("battchg",(0,5))`

// IndicatorValues 当前指示器取值快照
type IndicatorValues struct {
	Service   int
	Call      int
	CallSetup int
	CallHeld  int
	Signal    int
	Roam      int
	BattChg   int
}

// Get 按位置索引取值
func (v *IndicatorValues) Get(i Indicator) int {
	switch i {
	case IndicatorService:
		return v.Service
	case IndicatorCall:
		return v.Call
	case IndicatorCallSetup:
		return v.CallSetup
	case IndicatorCallHeld:
		return v.CallHeld
	case IndicatorSignal:
		return v.Signal
	case IndicatorRoam:
		return v.Roam
	case IndicatorBattChg:
		return v.BattChg
	default:
		return 0
	}
}

// Set 按位置索引赋值；索引未定义或取值越界时报错且不改动任何字段
func (v *IndicatorValues) Set(i Indicator, val int) error {
	if !i.Valid() {
		return fmt.Errorf("unknown indicator index %d", int(i))
	}
	if !i.InRange(val) {
		return fmt.Errorf("indicator %s value %d out of range", i, val)
	}
	switch i {
	case IndicatorService:
		v.Service = val
	case IndicatorCall:
		v.Call = val
	case IndicatorCallSetup:
		v.CallSetup = val
	case IndicatorCallHeld:
		v.CallHeld = val
	case IndicatorSignal:
		v.Signal = val
	case IndicatorRoam:
		v.Roam = val
	case IndicatorBattChg:
		v.BattChg = val
	}
	return nil
}

// String 按位置顺序编码为 +CIND 读取应答体，如 "1,0,0,0,5,0,5"
func (v *IndicatorValues) String() string {
	parts := make([]string, 0, IndicatorCount)
	for i := IndicatorService; i <= IndicatorBattChg; i++ {
		parts = append(parts, fmt.Sprintf("%d", v.Get(i)))
	}
	return strings.Join(parts, ",")
}

package types

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// UnitsPerCoin 最小计价单位与展示单位的换算比例（10^8 units = 1 coin）
const UnitsPerCoin = 100_000_000

var unitsPerCoinDec = decimal.NewFromInt(UnitsPerCoin)

// ParseDisplayPrice 把用户输入的展示价格（十进制字符串，如 "5.50"）换算为最小单位
// 换算规则：floor(price × 10^8)；展示字符串是有损的，换算必须基于原始输入
func ParseDisplayPrice(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("价格格式无效: %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("价格不能为负数: %q", s)
	}
	units := d.Mul(unitsPerCoinDec).Floor()
	if !units.IsInteger() || units.BigInt().BitLen() > 63 {
		return 0, fmt.Errorf("价格超出范围: %q", s)
	}
	return uint64(units.IntPart()), nil
}

// FormatPrice 最小单位 → 固定两位小数的展示字符串（不可逆换算）
func FormatPrice(units uint64) string {
	return decimal.NewFromUint64(units).Div(unitsPerCoinDec).StringFixed(2)
}

// ParseUnits 解析远端 JSON 中以字符串编码的 u64
func ParseUnits(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("u64 字段解析失败: %q", s)
	}
	return v, nil
}

// FormatUnits u64 → 远端 JSON 的字符串编码
func FormatUnits(v uint64) string {
	return strconv.FormatUint(v, 10)
}

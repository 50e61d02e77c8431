package types

import (
	"strings"
	"testing"
	"testing/quick"
)

func TestParseDisplayPrice(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "5.50", want: 550_000_000},
		{in: "0", want: 0},
		{in: "0.00000001", want: 1}, // 最小可表示单位
		{in: "1", want: 100_000_000},
		{in: "19.99", want: 1_999_000_000},
		// 超出 8 位小数的部分向下截断
		{in: "0.000000019", want: 1},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "1,5", wantErr: true},
	}
	for _, c := range cases {
		got, err := ParseDisplayPrice(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseDisplayPrice(%q) 期望报错，实际得到 %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDisplayPrice(%q) 报错: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseDisplayPrice(%q) got=%d want=%d", c.in, got, c.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{in: 550_000_000, want: "5.50"},
		{in: 0, want: "0.00"},
		{in: 1, want: "0.00"}, // 两位小数展示是有损的
		{in: 100_000_000, want: "1.00"},
		{in: 123_456_789, want: "1.23"},
	}
	for _, c := range cases {
		if got := FormatPrice(c.in); got != c.want {
			t.Fatalf("FormatPrice(%d) got=%q want=%q", c.in, got, c.want)
		}
	}
}

// 性质：展示字符串总是两位小数的非负十进制数
func TestFormatPriceShape(t *testing.T) {
	prop := func(units uint64) bool {
		s := FormatPrice(units)
		if strings.HasPrefix(s, "-") {
			return false
		}
		i := strings.IndexByte(s, '.')
		return i > 0 && len(s)-i-1 == 2
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("展示价格形态性质不成立: %v", err)
	}
}

// 性质：整数 coin 输入的换算与反向展示一致
func TestParseFormatRoundTrip(t *testing.T) {
	prop := func(coins uint32) bool {
		in := FormatUnits(uint64(coins))
		units, err := ParseDisplayPrice(in)
		if err != nil {
			return false
		}
		return units == uint64(coins)*UnitsPerCoin
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Fatalf("整数价格换算性质不成立: %v", err)
	}
}

func TestParseUnits(t *testing.T) {
	if v, err := ParseUnits("18446744073709551615"); err != nil || v != ^uint64(0) {
		t.Fatalf("ParseUnits 最大值解析失败: v=%d err=%v", v, err)
	}
	if _, err := ParseUnits("-1"); err == nil {
		t.Fatal("ParseUnits(-1) 期望报错")
	}
	if _, err := ParseUnits("1.5"); err == nil {
		t.Fatal("ParseUnits(1.5) 期望报错")
	}
}

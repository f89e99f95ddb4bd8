package text

import (
	"strings"
)

// maxChineseCardinal is the longest digit run read as a cardinal; longer
// runs and runs with a leading zero are read digit by digit.
const maxChineseCardinal = 13

const zhDigits = "零一二三四五六七八九"

var zhUnits = map[int]string{1: "十", 2: "百", 3: "千", 4: "万", 8: "亿"}

var zhUnitOrder = [...]int{8, 4, 3, 2, 1}

func zhDigit(c byte) string {
	runes := []rune(zhDigits)
	return string(runes[c-'0'])
}

// zhSpellDigits reads each digit; altOne uses 幺 for 1 as in phone numbers.
func zhSpellDigits(digits string, altOne bool) string {
	var b strings.Builder
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			b.WriteByte(c)
			continue
		}
		if c == '1' && altOne {
			b.WriteString("幺")
			continue
		}
		b.WriteString(zhDigit(c))
	}
	return b.String()
}

// zhValue splits a digit run at its largest unit and recurses.
func zhValue(digits string) []string {
	stripped := strings.TrimLeft(digits, "0")
	switch len(stripped) {
	case 0:
		return nil
	case 1:
		d := zhDigit(stripped[0])
		if len(stripped) < len(digits) {
			return []string{"零", d}
		}
		return []string{d}
	}

	unit := 8
	for _, u := range zhUnitOrder {
		if u < len(stripped) {
			unit = u
			break
		}
	}
	split := len(digits) - unit
	out := zhValue(digits[:split])
	out = append(out, zhUnits[unit])
	return append(out, zhValue(digits[split:])...)
}

// zhCardinal reads an integer digit run. With limit set, runs longer than
// maxChineseCardinal or with a leading zero are read digit by digit.
func zhCardinal(digits string, limit bool) string {
	if digits == "" {
		return ""
	}
	if limit && (digits[0] == '0' || len(digits) > maxChineseCardinal) {
		return zhSpellDigits(digits, true)
	}
	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" {
		return "零"
	}
	parts := zhValue(stripped)
	if len(parts) >= 2 && parts[0] == "一" && parts[1] == "十" {
		parts = parts[1:]
	}
	return strings.Join(parts, "")
}

// zhNumber reads an integer or decimal digit string.
func zhNumber(value string, limit bool) string {
	whole, frac, ok := strings.Cut(value, ".")
	if !ok {
		return zhCardinal(value, limit)
	}
	out := zhCardinal(whole, false)
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return out
	}
	if out == "" {
		out = "零"
	}
	return out + "点" + zhSpellDigits(frac, false)
}

// zhClock reads an hour or minute field, keeping a spoken leading zero.
func zhClock(field string) string {
	out := zhNumber(strings.TrimLeft(field, "0"), false)
	if out == "" {
		out = "零"
	}
	if strings.HasPrefix(field, "0") && out != "零" {
		out = "零" + out
	}
	return out
}

func allZero(s string) bool {
	return strings.Trim(s, "0") == ""
}

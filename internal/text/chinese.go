package text

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/example/go-polyglot-tts/internal/language"
)

// maxScientificShift bounds the exponent of expanded scientific notation.
const maxScientificShift = 18

const zhQuantifiers = `封|艘|把|目|套|段|人|所|朵|匹|张|座|回|场|尾|条|个|首|阙|阵|网|炮|顶|丘|棵|只|支|袭|辆|挑|担|颗|壳|窠|曲|墙|群|腔|砣|客|贯|扎|捆|刀|令|打|手|罗|坡|山|岭|江|溪|钟|队|单|双|对|出|口|头|脚|板|跳|枝|件|贴|针|线|管|名|位|身|堂|课|本|页|家|户|层|丝|毫|厘|分|钱|两|斤|铢|石|钧|锱|忽|(?:千|毫|微)?克|(?:公)?分|寸|尺|丈|里|寻|常|铺|程|(?:千|分|厘|毫|微)?米|撮|勺|合|升|斗|盘|碗|碟|叠|桶|笼|盆|盒|杯|斛|锅|簋|篮|罐|瓶|壶|卮|盏|箩|箱|煲|啖|袋|钵|年|月|日|季|刻|时|周|天|秒|小时|旬|纪|岁|世|更|夜|春|夏|秋|冬|代|伏|辈|丸|泡|粒|幢|堆|根|道|面|片|块|元|(?:亿|千万|百万|万|千|百|十)元?|(?:亿|千万|百万|万|千|百|十)?吨`

var zhMeasures = map[string]string{
	"cm2": "平方厘米", "cm3": "立方厘米", "cm": "厘米",
	"m2": "平方米", "m3": "立方米", "ml": "毫升", "mm": "毫米", "m": "米",
	"kg": "千克", "g": "克",
	"ms": "毫秒", "s": "秒",
	"db": "分贝",
	"km": "千米",
	"m/s": "米每秒", "km/s": "千米每秒", "km/h": "千米每小时", "mm/s": "毫米每秒",
}

// measureAlternation lists the unit keys longest first.
func measureAlternation() string {
	keys := make([]string, 0, len(zhMeasures))
	for k := range zhMeasures {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return "(?i:" + strings.Join(keys, "|") + ")"
}

// ChineseRules returns the Mandarin rule set.
func ChineseRules() *RuleSet {
	mobile := Func("mobile-phone", StageNumerals,
		`(\+?86 ?)?1(?:[38][0-9]|5[0-35-9]|7[678]|9[89]) ?[0-9]{4} ?[0-9]{4}`, expandPhone)
	mobile.DigitBounded = true
	landline := Func("telephone", StageNumerals, `(?:0(?:10|2[1-3]|[3-9][0-9]{2})-?)?[1-9][0-9]{6,7}`, expandPhone)
	landline.DigitBounded = true

	date := Func("date", StageNumerals,
		`([0-9]{4}|[0-9]{2})年(?:(1[0-2]|0?[1-9])月)?(?:([12][0-9]|30|31|0?[1-9])([日号]))?`, expandChineseDate)
	date.DigitBounded = true
	numericDate := Func("date-numeric", StageNumerals,
		`([0-9]{4}|[0-9]{2})([- /.])(1[0-2]|0?[1-9])([- /.])([12][0-9]|30|31|0?[1-9])([日号])?`, expandChineseNumericDate)
	numericDate.DigitBounded = true

	rules := []Rule{
		date,
		numericDate,
		Func("time-range", StageNumerals,
			`([01]?[0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?[~-]([01]?[0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?`,
			func(g []string) (string, bool) {
				return chineseClock(g[1], g[2], g[3]) + "至" + chineseClock(g[4], g[5], g[6]), true
			}),
		Func("time", StageNumerals, `([01]?[0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?`,
			func(g []string) (string, bool) {
				return chineseClock(g[1], g[2], g[3]), true
			}),
		Func("temperature", StageNumerals, `(-?)([0-9]+(?:\.[0-9]+)?)(°C|度|摄氏度)`, func(g []string) (string, bool) {
			sign := ""
			if g[1] != "" {
				sign = "零下"
			}
			unit := "度"
			if g[3] == "摄氏度" {
				unit = g[3]
			}
			return sign + zhNumber(g[2], false) + unit, true
		}),
		Func("measure", StageNumerals, `([0-9]+(?:\.[0-9]+)?)\s*(`+measureAlternation()+`)([^A-Za-z/]|$)`,
			func(g []string) (string, bool) {
				return zhNumber(g[1], false) + zhMeasures[strings.ToLower(g[2])] + g[3], true
			}),
		mobile,
		landline,
		Func("service-number", StageNumerals, `400-?[0-9]{3}-?[0-9]{4}`, expandPhone),
		Func("scientific", StageNumerals, `(-?)([0-9]+(?:\.[0-9]+)?)[eE]([+-]?[0-9]+)`, expandScientific),
		Func("fraction", StageNumerals, `(-?)([0-9]+)/([0-9]+)`, func(g []string) (string, bool) {
			sign := ""
			if g[1] != "" && !allZero(g[2]) {
				sign = "负"
			}
			return sign + zhNumber(g[3], false) + "分之" + zhNumber(g[2], false), true
		}),
		Func("percent", StageNumerals, `(-?)([0-9]+(?:\.[0-9]+)?)%`, func(g []string) (string, bool) {
			sign := ""
			if g[1] != "" {
				sign = "负"
			}
			return sign + "百分之" + zhNumber(g[2], false), true
		}),
		Func("range", StageNumerals,
			`(-?[0-9]+(?:\.[0-9]+)?|\.[0-9]+)[-~](-?[0-9]+(?:\.[0-9]+)?|\.[0-9]+)`,
			func(g []string) (string, bool) {
				return chineseSigned(g[1]) + "到" + chineseSigned(g[2]), true
			}),
		Func("quantifier", StageNumerals, `(-?)([0-9]+(?:\.[0-9]+)?)([多余几+])?(`+zhQuantifiers+`)`,
			func(g []string) (string, bool) {
				sign := ""
				if g[1] != "" && !allZero(strings.ReplaceAll(g[2], ".", "")) {
					sign = "负"
				}
				more := g[3]
				if more == "+" {
					more = "多"
				}
				return sign + zhNumber(g[2], false) + more + g[4], true
			}),
		Func("number", StageNumerals, `-?[0-9]+(?:\.[0-9]+)?|\.[0-9]+`, func(g []string) (string, bool) {
			return chineseSigned(g[0]), true
		}),
		Template("brackets", StagePunctuation, `[《》【】<=>{}()#&@_|\\"]+`, ","),
		Template("tilde", StagePunctuation, `~`, "至"),
	}
	rules = append(rules, punctuationRules()...)
	rules = append(rules, whitespaceRules()...)
	return NewRuleSet(language.Chinese, rules...)
}

// chineseSigned reads an optionally signed number; cardinals carry the
// digit-by-digit limit only when unsigned.
func chineseSigned(value string) string {
	if strings.HasPrefix(value, ".") {
		return zhNumber(value, false)
	}
	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")
	if negative && !allZero(strings.ReplaceAll(value, ".", "")) {
		return "负" + zhNumber(value, false)
	}
	return zhNumber(value, !negative)
}

func chineseClock(hour, minute, second string) string {
	out := zhNumber(hour, false) + "点"
	switch m := zhClock(minute); m {
	case "三十":
		out += "半"
	case "零":
	default:
		out += m + "分"
	}
	if second != "" {
		out += zhClock(second) + "秒"
	}
	return out
}

func chineseDate(year, month, day, suffix string) string {
	out := zhSpellDigits(year, false) + "年"
	if month != "" {
		out += zhCardinal(month, false) + "月"
	}
	if day != "" {
		if suffix == "" {
			suffix = "日"
		}
		out += zhCardinal(day, false) + suffix
	}
	return out
}

func expandChineseDate(g []string) (string, bool) {
	return chineseDate(g[1], g[2], g[3], g[4]), true
}

func expandChineseNumericDate(g []string) (string, bool) {
	if g[2] != g[4] {
		return "", false
	}
	return chineseDate(g[1], g[3], g[5], g[6]), true
}

func expandPhone(g []string) (string, bool) {
	s := strings.TrimPrefix(g[0], "+")
	s = strings.ReplaceAll(s, " ", "")
	parts := strings.Split(s, "-")
	for i, p := range parts {
		parts[i] = zhSpellDigits(p, true)
	}
	return strings.Join(parts, ","), true
}

func expandScientific(g []string) (string, bool) {
	exp, err := strconv.Atoi(g[3])
	if err != nil || exp > maxScientificShift || exp < -maxScientificShift {
		return "", false
	}

	whole, frac, _ := strings.Cut(g[2], ".")
	var value string
	if exp >= 0 {
		digits := whole + frac
		if exp < len(frac) {
			value = whole + frac[:exp] + "." + frac[exp:]
		} else {
			value = digits + strings.Repeat("0", exp-len(frac))
		}
	} else {
		value = "0." + strings.Repeat("0", -exp-1) + whole + frac
	}

	out := zhNumber(value, false)
	if g[1] != "" {
		out = "负" + out
	}
	return out, true
}

package phoneme

import (
	"strings"
	"unicode"
)

// Mandarin tone sandhi over segmented words. Tones are 1–5 with 5 for the
// neutral tone. The phrase dictionary stands in for sub-word segmentation.

// syllable is one Mandarin reading without initial/final split.
type syllable struct {
	base string
	tone int
}

// zhWord is a segmented word and its per-character readings. ok[i] is
// false when character i has no reading.
type zhWord struct {
	text   []rune
	syl    []syllable
	ok     []bool
	phrase bool
}

func (w zhWord) String() string { return string(w.text) }

func (w zhWord) complete() bool {
	for _, ok := range w.ok {
		if !ok {
			return false
		}
	}
	return len(w.text) > 0
}

func (w zhWord) allTone(t int) bool {
	if !w.complete() {
		return false
	}
	for _, s := range w.syl {
		if s.tone != t {
			return false
		}
	}
	return true
}

func (w zhWord) join(o zhWord) zhWord {
	return zhWord{
		text: append(append([]rune(nil), w.text...), o.text...),
		syl:  append(append([]syllable(nil), w.syl...), o.syl...),
		ok:   append(append([]bool(nil), w.ok...), o.ok...),
	}
}

func (w zhWord) isReduplication() bool {
	return len(w.text) == 2 && w.text[0] == w.text[1]
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

var (
	mustNeutral    = wordSet(mustNeutralWords)
	mustNotNeutral = wordSet(mustNotNeutralWords)
)

func isMustNeutral(s string) bool {
	_, ok := mustNeutral[s]
	return ok
}

const (
	neutralParticles  = "吧呢哈啊呐噻嘛吖嗨哦哒额滴哩哟喽啰耶喔诶"
	structuralAuxes   = "的地得"
	aspectMarkers     = "了着过"
	geModifiers       = "几有两半多各整每做是"
	directionalVerbs  = "上下进出回过起开"
	sandhiPunctuation = "：，；。？！“”‘’':,;.?!"
)

// mergeForSandhi joins segments the sandhi rules treat as one word:
// a standalone 不 or 一 with the following word, X一X reduplications,
// repeated words, runs of third tones up to three characters and a
// trailing 儿.
func mergeForSandhi(words []zhWord) []zhWord {
	words = mergeWith(words, '不')
	words = mergeYi(words)
	words = mergeReduplication(words)
	words = mergeThreeTones(words)
	words = mergeThreeTonesBoundary(words)
	return mergeEr(words)
}

func single(w zhWord, r rune) bool { return len(w.text) == 1 && w.text[0] == r }

func mergeWith(words []zhWord, r rune) []zhWord {
	var out []zhWord
	for _, w := range words {
		if n := len(out); n > 0 && single(out[n-1], r) {
			out[n-1] = out[n-1].join(w)
			continue
		}
		out = append(out, w)
	}
	return out
}

func mergeYi(words []zhWord) []zhWord {
	var out []zhWord
	for i := 0; i < len(words); i++ {
		w := words[i]
		if single(w, '一') && i > 0 && i+1 < len(words) && len(out) > 0 &&
			words[i-1].String() == words[i+1].String() && len(words[i-1].text) == 1 {
			out[len(out)-1] = out[len(out)-1].join(w).join(words[i+1])
			i++
			continue
		}
		out = append(out, w)
	}
	return mergeWith(out, '一')
}

func mergeReduplication(words []zhWord) []zhWord {
	var out []zhWord
	for _, w := range words {
		if n := len(out); n > 0 && out[n-1].String() == w.String() {
			out[n-1] = out[n-1].join(w)
			continue
		}
		out = append(out, w)
	}
	return out
}

func mergeThreeTones(words []zhWord) []zhWord {
	var out []zhWord
	merged := false
	for i, w := range words {
		if i > 0 && !merged {
			prev := words[i-1]
			if prev.allTone(3) && w.allTone(3) && !prev.isReduplication() &&
				len(prev.text)+len(w.text) <= 3 {
				out[len(out)-1] = out[len(out)-1].join(w)
				merged = true
				continue
			}
		}
		merged = false
		out = append(out, w)
	}
	return out
}

func mergeThreeTonesBoundary(words []zhWord) []zhWord {
	var out []zhWord
	merged := false
	for i, w := range words {
		if i > 0 && !merged {
			prev := words[i-1]
			pl := len(prev.syl) - 1
			if pl >= 0 && len(w.syl) > 0 && prev.ok[pl] && w.ok[0] &&
				prev.syl[pl].tone == 3 && w.syl[0].tone == 3 &&
				!prev.isReduplication() && len(prev.text)+len(w.text) <= 3 {
				out[len(out)-1] = out[len(out)-1].join(w)
				merged = true
				continue
			}
		}
		merged = false
		out = append(out, w)
	}
	return out
}

func mergeEr(words []zhWord) []zhWord {
	var out []zhWord
	for _, w := range words {
		if n := len(out); n > 0 && single(w, '儿') {
			out[n-1] = out[n-1].join(w)
			continue
		}
		out = append(out, w)
	}
	return out
}

// applySandhi rewrites the tones of a complete word in place. isPhrase
// reports whether a string is a dictionary phrase.
func applySandhi(w *zhWord, isPhrase func(string) bool) {
	if !w.complete() {
		return
	}
	buSandhi(w)
	yiSandhi(w)
	neutralSandhi(w, isPhrase)
	threeSandhi(w, isPhrase)
}

func buSandhi(w *zhWord) {
	t := w.text
	if len(t) == 3 && t[1] == '不' {
		w.syl[1].tone = 5
		return
	}
	for i, r := range t {
		if r == '不' && i+1 < len(t) && w.syl[i+1].tone == 4 {
			w.syl[i].tone = 2
		}
	}
}

func numericOrYi(t []rune) bool {
	for _, r := range t {
		if r != '一' && !unicode.IsNumber(r) && !strings.ContainsRune("二三四五六七八九十零百千万亿", r) {
			return false
		}
	}
	return true
}

func yiSandhi(w *zhWord) {
	t := w.text
	if !strings.ContainsRune(string(t), '一') || numericOrYi(t) {
		return
	}
	switch {
	case len(t) == 3 && t[1] == '一' && t[0] == t[2]:
		w.syl[1].tone = 5
	case strings.HasPrefix(string(t), "第一"):
		w.syl[1].tone = 1
	default:
		for i, r := range t {
			if r != '一' || i+1 >= len(t) {
				continue
			}
			if w.syl[i+1].tone == 4 {
				w.syl[i].tone = 2
			} else if !strings.ContainsRune(sandhiPunctuation, t[i+1]) {
				w.syl[i].tone = 4
			}
		}
	}
}

func neutralSandhi(w *zhWord, isPhrase func(string) bool) {
	t := w.text
	n := len(t)
	s := string(t)
	_, protected := mustNotNeutral[s]

	if !w.phrase && !protected {
		for j := 1; j < n; j++ {
			if t[j] == t[j-1] {
				w.syl[j].tone = 5
			}
		}
	}

	last := t[n-1]
	switch {
	case strings.ContainsRune(neutralParticles, last),
		strings.ContainsRune(structuralAuxes, last),
		n == 1 && strings.ContainsRune(aspectMarkers, last),
		n > 1 && last == '们',
		n > 1 && last == '子' && !protected,
		n > 1 && strings.ContainsRune("来去", last) && strings.ContainsRune(directionalVerbs, t[n-2]):
		w.syl[n-1].tone = 5
	}

	if i := strings.IndexRune(s, '个'); i >= 0 {
		gi := len([]rune(s[:i]))
		if gi >= 1 && (unicode.IsNumber(t[gi-1]) || numericOrYi(t[gi-1:gi]) || strings.ContainsRune(geModifiers, t[gi-1])) {
			w.syl[gi].tone = 5
		}
	} else if isMustNeutral(s) || (n > 1 && isMustNeutral(string(t[n-2:]))) {
		w.syl[n-1].tone = 5
	}

	k := splitWord(t, isPhrase)
	for _, part := range [][2]int{{0, k}, {k, n}} {
		if part[1]-part[0] > 1 && isMustNeutral(string(t[part[0]:part[1]])) {
			w.syl[part[1]-1].tone = 5
		}
	}
}

// splitWord returns the index splitting t into its two sub-words: the
// shortest dictionary phrase found as a proper prefix or suffix, else the
// first character and the rest.
func splitWord(t []rune, isPhrase func(string) bool) int {
	n := len(t)
	if n < 2 {
		return n
	}
	for size := 2; size < n; size++ {
		if isPhrase(string(t[:size])) {
			return size
		}
		if isPhrase(string(t[n-size:])) {
			return n - size
		}
	}
	return 1
}

func tonesAll3(s []syllable) bool {
	for _, x := range s {
		if x.tone != 3 {
			return false
		}
	}
	return len(s) > 0
}

func threeSandhi(w *zhWord, isPhrase func(string) bool) {
	s := w.syl
	switch len(w.text) {
	case 2:
		if tonesAll3(s) {
			s[0].tone = 2
		}
	case 3:
		k := splitWord(w.text, isPhrase)
		if tonesAll3(s) {
			if k == 2 {
				s[0].tone = 2
				s[1].tone = 2
			} else {
				s[1].tone = 2
			}
			return
		}
		first, second := s[:k], s[k:]
		if len(first) == 2 && tonesAll3(first) {
			first[0].tone = 2
		}
		if len(second) == 2 && tonesAll3(second) {
			second[0].tone = 2
		} else if !tonesAll3(second) && second[0].tone == 3 && first[len(first)-1].tone == 3 {
			first[len(first)-1].tone = 2
		}
	case 4:
		for _, half := range [][]syllable{s[:2], s[2:]} {
			if tonesAll3(half) {
				half[0].tone = 2
			}
		}
	}
}

// mustNeutralWords end in a neutral tone.
const mustNeutralWords = `
	麻烦 麻利 鸳鸯 高粱 骨头 骆驼 马虎 首饰 馒头 馄饨 风筝 难为
	队伍 阔气 闺女 门道 锄头 铺盖 铃铛 铁匠 钥匙 里脊 里头 部分
	那么 道士 造化 迷糊 连累 这么 这个 运气 过去 软和 转悠 踏实
	跳蚤 跟头 趔趄 财主 豆腐 讲究 记性 记号 认识 规矩 见识 裁缝
	补丁 衣裳 衣服 衙门 街坊 行李 行当 蛤蟆 蘑菇 薄荷 葫芦 葡萄
	萝卜 荸荠 苗条 苗头 苍蝇 芝麻 舒服 舒坦 舌头 自在 膏药 脾气
	脑袋 脊梁 能耐 胳膊 胭脂 胡萝 胡琴 胡同 聪明 耽误 耽搁 耷拉
	耳朵 老爷 老实 老婆 老头 老太 翻腾 罗嗦 罐头 编辑 结实 红火
	累赘 糨糊 糊涂 精神 粮食 簸箕 篱笆 算计 算盘 答应 笤帚 笑语
	笑话 窟窿 窝囊 窗户 稳当 稀罕 称呼 秧歌 秀气 秀才 福气 祖宗
	砚台 码头 石榴 石头 石匠 知识 眼睛 眯缝 眨巴 眉毛 相声 盘算
	白净 痢疾 痛快 疟疾 疙瘩 疏忽 畜生 生意 甘蔗 琵琶 琢磨 琉璃
	玻璃 玫瑰 玄乎 狐狸 状元 特务 牲口 牙碜 牌楼 爽快 爱人 热闹
	烧饼 烟筒 烂糊 点心 炊帚 灯笼 火候 漂亮 滑溜 溜达 温和 清楚
	消息 浪头 活泼 比方 正经 欺负 模糊 槟榔 棺材 棒槌 棉花 核桃
	栅栏 柴火 架势 枕头 枇杷 机灵 本事 木头 木匠 朋友 月饼 月亮
	暖和 明白 时候 新鲜 故事 收拾 收成 提防 挖苦 挑剔 指甲 指头
	拾掇 拳头 拨弄 招牌 招呼 抬举 护士 折腾 扫帚 打量 打算 打点
	打扮 打听 打发 扎实 扁担 戒指 懒得 意识 意思 情形 悟性 怪物
	思量 怎么 念头 念叨 快活 忙活 志气 心思 得罪 张罗 弟兄 开通
	应酬 庄稼 干事 帮手 帐篷 希罕 师父 师傅 巴结 巴掌 差事 工夫
	岁数 屁股 尾巴 少爷 小气 小伙 将就 对头 对付 寡妇 家伙 客气
	实在 官司 学问 学生 字号 嫁妆 媳妇 媒人 婆家 娘家 委屈 姑娘
	姐夫 妯娌 妥当 妖精 奴才 女婿 头发 太阳 大爷 大方 大意 大夫
	多少 多么 外甥 壮实 地道 地方 在乎 困难 嘴巴 嘱咐 嘟囔 嘀咕
	喜欢 喇嘛 喇叭 商量 唾沫 哑巴 哈欠 哆嗦 咳嗽 和尚 告诉 告示
	含糊 吓唬 后头 名字 名堂 合同 吆喝 叫唤 口袋 厚道 厉害 千斤
	包袱 包涵 匀称 勤快 动静 动弹 功夫 力气 前头 刺猬 刺激 别扭
	利落 利索 利害 分析 出息 凑合 凉快 冷战 冤枉 冒失 养活 关系
	先生 兄弟 便宜 使唤 佩服 作坊 体面 位置 似的 伙计 休息 什么
	人家 亲戚 亲家 交情 云彩 事情 买卖 主意 丫头 丧气 两口 东西
	东家 世故 不由 不在 下水 下巴 上头 上司 丈夫 丈人 一辈 那个
	菩萨 父亲 母亲 咕噜 邋遢 费用 冤家 甜头 介绍 荒唐 大人 泥鳅
	幸福 熟悉 计划 扑腾 蜡烛 姥爷 照顾 喉咙 吉他 弄堂 蚂蚱 凤凰
	拖沓 寒碜 糟蹋 倒腾 报复 逻辑 盘缠 喽啰 牢骚 咖喱 扫把 惦记
`

// mustNotNeutralWords keep their reduplicated or 子 tones.
const mustNotNeutralWords = `
	男子 女子 分子 原子 量子 莲子 石子 瓜子 电子 人人 虎虎 幺幺
	干嘛 学子 哈哈 数数 袅袅 局地 以下 娃哈哈 花花草草 留得 耕地 想想
	熙熙 攘攘 卵子 死死 冉冉 恳恳 佼佼 吵吵 打打 考考 整整 莘莘
	落地 算子 家家户户 青青
`

package phoneme

import "sync"

// builtinChinese holds common phrases with their citation readings; tone
// sandhi runs on top of these.
const builtinChinese = `# built-in Mandarin phrase lexicon
我们 wo3 men5
你们 ni3 men5
他们 ta1 men5
你好 ni3 hao3
世界 shi4 jie4
中国 zhong1 guo2
北京 bei3 jing1
上海 shang4 hai3
长城 chang2 cheng2
汉语 han4 yu3
普通话 pu3 tong1 hua4
语音 yu3 yin1
合成 he2 cheng2
音乐 yin1 yue4
银行 yin2 hang2
重要 zhong4 yao4
电话 dian4 hua4
号码 hao4 ma3
今天 jin1 tian1
明天 ming2 tian1
现在 xian4 zai4
时间 shi2 jian1
时候 shi2 hou5
工作 gong1 zuo4
问题 wen4 ti2
没有 mei2 you3
知道 zhi1 dao4
觉得 jue2 de5
还是 hai2 shi4
因为 yin1 wei4
所以 suo3 yi3
但是 dan4 shi4
已经 yi3 jing1
可以 ke3 yi3
喜欢 xi3 huan5
学习 xue2 xi2
学生 xue2 sheng5
什么 shen2 me5
怎么 zen3 me5
这么 zhe4 me5
那么 na4 me5
朋友 peng2 you5
东西 dong1 xi5
先生 xian1 sheng5
地方 di4 fang5
事情 shi4 qing5
名字 ming2 zi5
衣服 yi1 fu5
告诉 gao4 su5
知识 zhi1 shi5
认识 ren4 shi5
意思 yi4 si5
眼睛 yan3 jing5
头发 tou2 fa5
明白 ming2 bai5
清楚 qing1 chu5
消息 xiao1 xi5
休息 xiu1 xi5
漂亮 piao4 liang5
关系 guan1 xi5
便宜 pian2 yi5
姑娘 gu1 niang5
豆腐 dou4 fu5
客气 ke4 qi5
舒服 shu1 fu5
热闹 re4 nao5
谢谢 xie4 xie5
妈妈 ma1 ma5
常常 chang2 chang2
一样 yi1 yang4
第一 di4 yi1
不是 bu4 shi4
水果 shui3 guo3
桌子 zhuo1 zi3
进来 jin4 lai2
出去 chu1 qu4
一个 yi1 ge4
两个 liang3 ge4
几个 ji3 ge4
这个 zhe4 ge4
那个 na4 ge4
管理 guan3 li3
老虎 lao3 hu3
小姐 xiao3 jie3
展览 zhan3 lan3
展览馆 zhan3 lan3 guan3
`

var (
	chineseOnce sync.Once
	chineseDict *Dictionary
)

// BuiltinChinese returns the built-in phrase lexicon.
func BuiltinChinese() *Dictionary {
	chineseOnce.Do(func() {
		d, err := ParseDictionaryString(builtinChinese)
		if err != nil {
			panic(err)
		}
		chineseDict = d
	})
	return chineseDict
}

package phoneme

import "sync"

// builtinEnglish is a small CMU-format lexicon covering function words and
// every word the English normalizer emits for numbers and currency.
const builtinEnglish = `;;; built-in English lexicon
A AH0
ABOUT AH0 B AW1 T
ALL AO1 L
AN AE1 N
AND AH0 N D
ARE AA1 R
AS AE1 Z
AT AE1 T
BE B IY1
BUT B AH1 T
BY B AY1
CALL K AO1 L
CAN K AE1 N
CAT K AE1 T
CATS K AE1 T S
COME K AH1 M
COULD K UH1 D
DAY D EY1
DEGREES D IH0 G R IY1 Z
DO D UW1
DOCTOR D AA1 K T ER0
DOG D AO1 G
DOGS D AO1 G Z
EACH IY1 CH
ET EH1 T
CETERA S EH1 T ER0 AH0
FOR F AO1 R
FROM F R AH1 M
GET G EH1 T
GO G OW1
GOOD G UH1 D
HAD HH AE1 D
HAS HH AE1 Z
HAVE HH AE1 V
HE HH IY1
HELLO HH AH0 L OW1
HER HH ER1
HIM HH IH1 M
HIS HH IH1 Z
HOW HH AW1
I AY1
IF IH1 F
IN IH0 N
IS IH1 Z
IT IH1 T
LIKE L AY1 K
LOOK L UH1 K
MADE M EY1 D
MAKE M EY1 K
MANY M EH1 N IY0
ME M IY1
MISS M IH1 S
MISSUS M IH1 S IH0 Z
MISTER M IH1 S T ER0
MORE M AO1 R
MORNING M AO1 R N IH0 NG
MY M AY1
NAME N EY1 M
NIGHT N AY1 T
NO N OW1
NOT N AA1 T
NOW N AW1
OF AH1 V
ON AA1 N
OR AO1 R
OUT AW1 T
PAID P EY1 D
PEOPLE P IY1 P AH0 L
PLEASE P L IY1 Z
SAID S EH1 D
SAINT S EY1 N T
SEE S IY1
SHE SH IY1
SO S OW1
SOME S AH1 M
SPEECH S P IY1 CH
TEXT T EH1 K S T
THAN DH AE1 N
THANK TH AE1 NG K
THANKS TH AE1 NG K S
THAT DH AE1 T
THE DH AH0
THEIR DH EH1 R
THEM DH EH1 M
THEN DH EH1 N
THERE DH EH1 R
THEY DH EY1
THIS DH IH1 S
TIME T AY1 M
TO T UW1
UP AH1 P
USE Y UW1 Z
VOICE V OY1 S
WAIT W EY1 T
WAS W AA1 Z
WATER W AO1 T ER0
WAY W EY1
WE W IY1
WERE W ER1
WHAT W AH1 T
WHEN W EH1 N
WHICH W IH1 CH
WHO HH UW1
WILL W IH1 L
WITH W IH1 DH
WORLD W ER1 L D
WOULD W UH1 D
WRITE R AY1 T
YES Y EH1 S
YOU Y UW1
YOUR Y AO1 R
# numbers
ZERO Z IH1 R OW0
ONE W AH1 N
TWO T UW1
THREE TH R IY1
FOUR F AO1 R
FIVE F AY1 V
SIX S IH1 K S
SEVEN S EH1 V AH0 N
EIGHT EY1 T
NINE N AY1 N
TEN T EH1 N
ELEVEN IH0 L EH1 V AH0 N
TWELVE T W EH1 L V
THIRTEEN TH ER1 T IY1 N
FOURTEEN F AO1 R T IY1 N
FIFTEEN F IH0 F T IY1 N
SIXTEEN S IH0 K S T IY1 N
SEVENTEEN S EH1 V AH0 N T IY1 N
EIGHTEEN EY0 T IY1 N
NINETEEN N AY1 N T IY1 N
TWENTY T W EH1 N T IY0
THIRTY TH ER1 D IY0
FORTY F AO1 R T IY0
FIFTY F IH1 F T IY0
SIXTY S IH1 K S T IY0
SEVENTY S EH1 V AH0 N T IY0
EIGHTY EY1 T IY0
NINETY N AY1 N T IY0
HUNDRED HH AH1 N D R AH0 D
THOUSAND TH AW1 Z AH0 N D
MILLION M IH1 L Y AH0 N
BILLION B IH1 L Y AH0 N
TRILLION T R IH1 L Y AH0 N
QUADRILLION K W AA0 D R IH1 L Y AH0 N
POINT P OY1 N T
MINUS M AY1 N AH0 S
PERCENT P ER0 S EH1 N T
DOLLAR D AA1 L ER0
DOLLARS D AA1 L ER0 Z
CENT S EH1 N T
CENTS S EH1 N T S
POUND P AW1 N D
POUNDS P AW1 N D Z
OH OW1
O'CLOCK AH0 K L AA1 K
FIRST F ER1 S T
SECOND S EH1 K AH0 N D
THIRD TH ER1 D
FOURTH F AO1 R TH
FIFTH F IH1 F TH
SIXTH S IH1 K S TH
SEVENTH S EH1 V AH0 N TH
EIGHTH EY1 T TH
NINTH N AY1 N TH
TENTH T EH1 N TH
TWELFTH T W EH1 L F TH
TWENTIETH T W EH1 N T IY0 AH0 TH
# months
JANUARY JH AE1 N Y UW0 EH2 R IY0
FEBRUARY F EH1 B Y AH0 W EH2 R IY0
MARCH M AA1 R CH
APRIL EY1 P R AH0 L
MAY M EY1
JUNE JH UW1 N
JULY JH UW0 L AY1
AUGUST AA1 G AH0 S T
SEPTEMBER S EH0 P T EH1 M B ER0
OCTOBER AA0 K T OW1 B ER0
NOVEMBER N OW0 V EH1 M B ER0
DECEMBER D IH0 S EH1 M B ER0
`

var (
	englishOnce sync.Once
	englishDict *Dictionary
)

// BuiltinEnglish returns the built-in English lexicon.
func BuiltinEnglish() *Dictionary {
	englishOnce.Do(func() {
		d, err := ParseDictionaryString(builtinEnglish)
		if err != nil {
			panic(err)
		}
		englishDict = d
	})
	return englishDict
}

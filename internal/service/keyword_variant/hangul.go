package keyword_variant

const (
	syllableBase  = 0xAC00
	syllableLast  = 0xD7A3
	jungCount     = 21
	jongCount     = 28
	choseongBlock = jungCount * jongCount
)

var choseong = []rune{
	'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
	'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
}

// Jungseong indices that speech recognition tends to confuse.
// ㅐ/ㅔ, ㅒ/ㅖ, ㅙ/ㅚ/ㅞ, ㅗ/ㅓ, ㅜ/ㅡ.
var vowelSwaps = map[int][]int{
	1:  {5},
	5:  {1},
	3:  {7},
	7:  {3},
	10: {11, 15},
	11: {10, 15},
	15: {10, 11},
	8:  {4},
	4:  {8},
	13: {18},
	18: {13},
}

func isSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableLast
}

func decompose(r rune) (cho, jung, jong int) {
	idx := int(r - syllableBase)
	return idx / choseongBlock, (idx % choseongBlock) / jongCount, idx % jongCount
}

func compose(cho, jung, jong int) rune {
	return rune(syllableBase + cho*choseongBlock + jung*jongCount + jong)
}

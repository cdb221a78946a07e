// Package entity はplateフィーチャーのドメインモデルを定義します。
package entity

// CharClass は検出モデルが出力する文字クラスIDです。
// 値はモデルの学習時のクラス順序と一致している必要があります。
type CharClass int

const (
	Digit0 CharClass = iota
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9
	LetterAlef
	LetterBe
	LetterTe
	LetterSe
	LetterJim
	LetterDal
	LetterSin
	LetterShin
	LetterSad
	LetterTa
	LetterZa
	LetterEyn
	LetterGhaf
	LetterLam
	LetterMim
	LetterNun
	LetterHe
	LetterVav
	LetterPe
	LetterZhe
	// ClassPlate はプレート全体の領域を表すクラスで、文字ではありません。
	ClassPlate
	LetterYe
	LetterZe
)

// classNames はモデルのラベル名です（ログ出力用）。
var classNames = [...]string{
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"Alef", "Be", "Te", "Se", "Jim", "Dal", "Sin", "Shin",
	"Sad", "Ta", "Za", "Eyn", "Ghaf", "Lam", "Mim", "Nun",
	"He", "Vav", "Pe", "Zhe", "plate", "Ye", "Ze",
}

// glyphs はクラスから表示文字へのマッピングです。ClassPlateは含みません。
var glyphs = map[CharClass]string{
	Digit0: "۰", Digit1: "۱", Digit2: "۲", Digit3: "۳", Digit4: "۴",
	Digit5: "۵", Digit6: "۶", Digit7: "۷", Digit8: "۸", Digit9: "۹",
	LetterAlef: "الف", LetterBe: "ب", LetterTe: "ت", LetterSe: "ث",
	LetterJim: "ج", LetterDal: "د", LetterSin: "س", LetterShin: "ش",
	LetterSad: "ص", LetterTa: "ط", LetterZa: "ظ", LetterEyn: "ع",
	LetterGhaf: "ق", LetterLam: "ل", LetterMim: "م", LetterNun: "ن",
	LetterHe: "ه", LetterVav: "و", LetterPe: "پ", LetterZhe: "ژ",
	LetterYe: "ی", LetterZe: "ز",
}

// LookupClass はクラスIDが文字テーブルに存在すればそのCharClassを返します。
// 範囲外のIDや文字以外のクラス（ClassPlate）の場合はfalseを返します。
func LookupClass(id int) (CharClass, bool) {
	c := CharClass(id)
	if _, ok := glyphs[c]; !ok {
		return 0, false
	}
	return c, true
}

// LookupGlyph は表示文字に対応するCharClassを逆引きします。
// 西アラビア数字（"0"〜"9"）はペルシア数字と同じクラスとして扱います。
// OCRが返しがちなアラビア文字の異体（٤, ي, ا など）も受け付けます。
func LookupGlyph(glyph string) (CharClass, bool) {
	if len(glyph) == 1 && glyph[0] >= '0' && glyph[0] <= '9' {
		return Digit0 + CharClass(glyph[0]-'0'), true
	}
	if r := []rune(glyph); len(r) == 1 && r[0] >= '٠' && r[0] <= '٩' {
		return Digit0 + CharClass(r[0]-'٠'), true
	}
	if alias, ok := glyphAliases[glyph]; ok {
		glyph = alias
	}
	c, ok := glyphIndex[glyph]
	return c, ok
}

var glyphAliases = map[string]string{
	"ا": "الف",
	"آ": "الف",
	"أ": "الف",
	"ي": "ی",
	"ى": "ی",
	"ة": "ه",
}

var glyphIndex = func() map[string]CharClass {
	m := make(map[string]CharClass, len(glyphs))
	for c, g := range glyphs {
		m[g] = c
	}
	return m
}()

// Glyph はクラスの表示文字を返します。文字でないクラスの場合は空文字列です。
func (c CharClass) Glyph() string {
	return glyphs[c]
}

// Name はモデルのラベル名を返します。
func (c CharClass) Name() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// IsDigit は数字クラスかどうかを返します。
func (c CharClass) IsDigit() bool {
	return c >= Digit0 && c <= Digit9
}

// IsLetter は文字テーブルに含まれる数字以外のクラスかどうかを返します。
func (c CharClass) IsLetter() bool {
	if c.IsDigit() {
		return false
	}
	_, ok := glyphs[c]
	return ok
}

func (c CharClass) String() string {
	return c.Name()
}

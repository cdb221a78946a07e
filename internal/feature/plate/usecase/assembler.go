package usecase

import (
	"sort"
	"strings"

	"plate_reader/internal/feature/plate/domain/entity"
)

const (
	// MinCanonicalDigits は正規形として組み立てるために必要な最小数字数です。
	MinCanonicalDigits = 5
	// MaxPlateDigits は正規形で消費する最大数字数です。これを超える数字は破棄されます。
	MaxPlateDigits = 7
)

// ResolveCharacters は検出結果を文字テーブルで解決します。
// テーブルにないクラスID（プレート領域など）は黙って破棄されます。
func ResolveCharacters(dets []entity.Detection) []entity.Character {
	out := make([]entity.Character, 0, len(dets))
	for _, d := range dets {
		c, ok := entity.LookupClass(d.ClassID)
		if !ok {
			continue
		}
		out = append(out, entity.Character{Left: d.Left, Class: c})
	}
	return out
}

// AssemblePlate は解決済みの文字列を左から右の読み順に並べ、PlatePartsを組み立てます。
// 入力が空の場合はfalseを返します。
//
// 数字が5個以上かつ文字が1個以上あれば正規形（左2桁・文字・右3桁・都市コード最大2桁）、
// それ以外は全文字をRightDigitsに連結したフォールバック形を返します。
// 8個目以降の数字は破棄されます。
func AssemblePlate(chars []entity.Character) (*entity.PlateParts, bool) {
	if len(chars) == 0 {
		return nil, false
	}

	ordered := make([]entity.Character, len(chars))
	copy(ordered, chars)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Left < ordered[j].Left
	})

	var digits, letters []string
	for _, c := range ordered {
		if c.Class.IsDigit() {
			digits = append(digits, c.Class.Glyph())
		} else {
			letters = append(letters, c.Class.Glyph())
		}
	}

	if len(digits) < MinCanonicalDigits || len(letters) == 0 {
		var sb strings.Builder
		for _, c := range ordered {
			sb.WriteString(c.Class.Glyph())
		}
		return &entity.PlateParts{RightDigits: sb.String()}, true
	}

	city := ""
	if len(digits) > MinCanonicalDigits {
		city = strings.Join(digits[MinCanonicalDigits:min(len(digits), MaxPlateDigits)], "")
	}
	return &entity.PlateParts{
		LeftDigits:  strings.Join(digits[:2], ""),
		Letter:      letters[0],
		RightDigits: strings.Join(digits[2:MinCanonicalDigits], ""),
		CityDigits:  city,
	}, true
}

// IsCanonical は正規形として組み立てられたかどうかを返します。
func IsCanonical(p *entity.PlateParts) bool {
	return p != nil && p.Letter != ""
}

package entity

import "time"

// Detection は検出モデルの1件の出力を表します。
type Detection struct {
	Left    float64 // バウンディングボックス左端のx座標
	ClassID int     // 予測クラスID
}

// Character は文字テーブルで解決済みの検出結果です。
type Character struct {
	Left  float64
	Class CharClass
}

// PlateParts は組み立てられたナンバープレートです。
// 正規形では4フィールドすべてが埋まり（city_digitsは空の場合あり）、
// フォールバック形では認識した全文字がRightDigitsに連結されます。
type PlateParts struct {
	LeftDigits  string
	Letter      string
	RightDigits string
	CityDigits  string
}

// Text はフィールド順に連結したプレート文字列を返します。
func (p PlateParts) Text() string {
	return p.LeftDigits + p.Letter + p.RightDigits + p.CityDigits
}

// Outcome はナンバープレート認識リクエストの結果種別です。
type Outcome string

const (
	OutcomeCanonical Outcome = "canonical"
	OutcomeFallback  Outcome = "fallback"
	OutcomeNotFound  Outcome = "not_found"
)

// Recognition は認識履歴の1件を表します。
type Recognition struct {
	ID         string
	Outcome    Outcome
	Plate      *PlateParts // OutcomeNotFoundの場合はnil
	Detections int         // 文字テーブルで解決できた検出数
	Backend    string      // 使用した検出バックエンド
	CreatedAt  time.Time
}

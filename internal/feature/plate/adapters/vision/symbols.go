package vision

import (
	"math"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"plate_reader/internal/feature/plate/domain/entity"
)

// alefSpelling はプレート上で文字「الف」として印字される3シンボルの並びです。
var alefSpelling = []string{"ا", "ل", "ف"}

// SymbolsToDetections はOCR結果の各シンボルを文字クラスに変換します。
// 文字テーブルにないシンボルや座標を持たないシンボルは捨てます。
func SymbolsToDetections(ann *visionpb.TextAnnotation) []entity.Detection {
	var dets []entity.Detection
	for _, page := range ann.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, para := range block.GetParagraphs() {
				for _, word := range para.GetWords() {
					dets = append(dets, wordToDetections(word.GetSymbols())...)
				}
			}
		}
	}
	return dets
}

// wordToDetections は1単語分のシンボルを変換します。
// Visionは1文字ずつシンボルを返すため、単語内の「ا ل ف」の連続は1つのالفにまとめます。
func wordToDetections(syms []*visionpb.Symbol) []entity.Detection {
	var dets []entity.Detection
	for i := 0; i < len(syms); i++ {
		if isAlefSpelling(syms[i:]) {
			left, ok := leftEdge(syms[i : i+len(alefSpelling)]...)
			if ok {
				dets = append(dets, entity.Detection{Left: left, ClassID: int(entity.LetterAlef)})
			}
			i += len(alefSpelling) - 1
			continue
		}

		sym := syms[i]
		class, ok := entity.LookupGlyph(sym.GetText())
		if !ok {
			continue
		}
		left, ok := leftEdge(sym)
		if !ok {
			continue
		}
		dets = append(dets, entity.Detection{Left: left, ClassID: int(class)})
	}
	return dets
}

func isAlefSpelling(syms []*visionpb.Symbol) bool {
	if len(syms) < len(alefSpelling) {
		return false
	}
	for i, want := range alefSpelling {
		if syms[i].GetText() != want {
			return false
		}
	}
	return true
}

// leftEdge はシンボル群の枠の最小x座標を返します。
func leftEdge(syms ...*visionpb.Symbol) (float64, bool) {
	left := math.Inf(1)
	found := false
	for _, sym := range syms {
		for _, v := range sym.GetBoundingBox().GetVertices() {
			left = math.Min(left, float64(v.GetX()))
			found = true
		}
	}
	return left, found
}

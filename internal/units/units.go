// Package units: Tarif ve tedarik katmanlarının kullandığı hafif birim yardımcıları.
package units

import (
	"fmt"
	"math"
	"strings"
)

type Group string

const (
	GroupMass   Group = "mass"
	GroupVolume Group = "volume"
	GroupCount  Group = "count"
	GroupTime   Group = "time"
	GroupOther  Group = "other"
)

// Kanonik birim listeleri
var (
	MassUnits   = []string{"mg", "g", "kg", "oz", "lbs"}
	VolumeUnits = []string{"ml", "liter"}
	CountUnits  = []string{"count", "hour"} // "hour" işçilik kalemleri için
)

var synonyms = map[string]string{
	// kütle
	"lb":        "lbs",
	"pound":     "lbs",
	"pounds":    "lbs",
	"ounce":     "oz",
	"ounces":    "oz",
	"gram":      "g",
	"grams":     "g",
	"kilogram":  "kg",
	"kilograms": "kg",
	// hacim
	"l":           "liter",
	"litre":       "liter",
	"litres":      "liter",
	"milliliter":  "ml",
	"milliliters": "ml",
	// adet/zaman
	"ea":    "count",
	"unit":  "count",
	"units": "count",
	"qty":   "count",
}

// Canonical: Serbest metin birim yazımını kanonik hâline indirger ("litre" → "liter").
// Bilinmeyen birimler küçük harfe çevrilmiş olarak aynen döner.
func Canonical(u string) string {
	if u == "" {
		return ""
	}
	key := strings.ToLower(strings.TrimSpace(u))
	if cu, ok := synonyms[key]; ok {
		return cu
	}
	return key
}

func GroupOf(u string) Group {
	cu := Canonical(u)
	for _, m := range MassUnits {
		if cu == m {
			return GroupMass
		}
	}
	for _, v := range VolumeUnits {
		if cu == v {
			return GroupVolume
		}
	}
	for _, cnt := range CountUnits {
		if cu == cnt {
			if cu == "hour" {
				return GroupTime
			}
			return GroupCount
		}
	}
	return GroupOther
}

func AreCompatible(a, b string) bool {
	return GroupOf(a) == GroupOf(b)
}

// Baz birimlere çevir (g, ml; count ve hour kendi bazlarıdır)
func toBase(amount float64, unit string) float64 {
	u := Canonical(unit)

	switch GroupOf(u) {
	case GroupMass:
		switch u {
		case "mg":
			return amount / 1000
		case "g":
			return amount
		case "kg":
			return amount * 1000
		case "oz":
			return amount * 28.349523125
		case "lbs":
			return amount * 453.59237
		}
		return amount
	case GroupVolume:
		switch u {
		case "ml":
			return amount
		case "liter":
			return amount * 1000
		}
		return amount
	default:
		return amount
	}
}

func fromBase(amountBase float64, unit string) float64 {
	u := Canonical(unit)

	switch GroupOf(u) {
	case GroupMass:
		switch u {
		case "mg":
			return amountBase * 1000
		case "g":
			return amountBase
		case "kg":
			return amountBase / 1000
		case "oz":
			return amountBase / 28.349523125
		case "lbs":
			return amountBase / 453.59237
		}
		return amountBase
	case GroupVolume:
		switch u {
		case "ml":
			return amountBase
		case "liter":
			return amountBase / 1000
		}
		return amountBase
	default:
		return amountBase
	}
}

// Convert: Aynı gruptaki birimler arasında baz birim üzerinden çevirir.
// Gruplar uyumsuzsa miktar DEĞİŞMEDEN döner; hata fırlatmaz. Görüntüleme
// kodunu çökertmemek için bilinçli bir tercih — çağıran taraf gerekirse önce
// AreCompatible ile kontrol etmeli.
func Convert(amount float64, fromUnit, toUnit string) float64 {
	from := Canonical(fromUnit)
	to := Canonical(toUnit)
	if from == "" || to == "" {
		return amount
	}
	if !AreCompatible(from, to) {
		return amount
	}
	if from == to {
		return amount
	}

	return fromBase(toBase(amount, from), to)
}

// countFamily: Sayılabilir kalem birimleri. Tavan yuvarlama ve temizlik kuyruğu
// uygunluğu bu aileye bakar; kavanoz/tabak gibi kap adları da eski verilerde
// birim alanına yazıldığı için listededir.
var countFamily = map[string]bool{
	"count": true, "pc": true, "pcs": true, "piece": true, "pieces": true,
	"each": true, "item": true, "items": true,
	"jar": true, "jars": true, "dish": true, "dishes": true,
	"plate": true, "plates": true, "tray": true, "trays": true,
	"tub": true, "tubs": true,
}

func IsCountFamily(u string) bool {
	return countFamily[Canonical(u)]
}

// FormatAmount: Görüntüleme için büyüklüğe göre hassasiyet seçer, sondaki
// sıfırları kırpar.
func FormatAmount(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	abs := math.Abs(n)
	var fixed string
	switch {
	case abs >= 100:
		fixed = fmt.Sprintf("%.0f", n)
	case abs >= 10:
		fixed = fmt.Sprintf("%.1f", n)
	default:
		fixed = fmt.Sprintf("%.2f", n)
	}
	fixed = strings.TrimRight(fixed, "0")
	fixed = strings.TrimRight(fixed, ".")
	if fixed == "" || fixed == "-" {
		return "0"
	}
	return fixed
}

package model

import "strings"

// Category — категория файла, вычисляемая по content-type при загрузке.
type Category string

const (
	CategoryImages Category = "Images"
	CategoryPDFs   Category = "PDFs"
	CategorySheets Category = "Sheets"
	CategoryDocs   Category = "Docs"
	CategoryOthers Category = "Others"
)

// Categories перечисляет все категории в порядке проверки правил.
var Categories = []Category{CategoryImages, CategoryPDFs, CategorySheets, CategoryDocs, CategoryOthers}

// Classify определяет категорию по content-type. Первое совпавшее правило побеждает.
func Classify(contentType string) Category {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return CategoryImages
	case ct == "application/pdf":
		return CategoryPDFs
	case strings.Contains(ct, "sheet"), strings.Contains(ct, "csv"), strings.Contains(ct, "excel"):
		return CategorySheets
	case strings.Contains(ct, "document"), strings.Contains(ct, "word"), ct == "text/plain":
		return CategoryDocs
	default:
		return CategoryOthers
	}
}

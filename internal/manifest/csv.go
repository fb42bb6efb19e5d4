package manifest

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
)

// utf8BOM keeps Excel and Google Sheets from mangling Cyrillic text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"index",
	"original_filename",
	"new_filename",
	"alt_text_ua",
	"alt_text_en",
	"alt_text_ru",
	"title_ua",
	"title_en",
	"title_ru",
	"description_ua",
	"description_en",
	"description_ru",
	"tags_ua",
	"tags_en",
	"tags_ru",
	"status",
	"error_kind",
	"error_message",
}

func writeCSVExport(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(csvRow(record)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func csvRow(record Record) []string {
	var meta LanguageBlock
	if record.Metadata != nil {
		meta = *record.Metadata
	}
	return []string{
		strconv.Itoa(record.Index),
		record.OriginalFilename,
		record.NewFilename,
		meta.UA.AltText,
		meta.EN.AltText,
		meta.RU.AltText,
		meta.UA.Title,
		meta.EN.Title,
		meta.RU.Title,
		meta.UA.Description,
		meta.EN.Description,
		meta.RU.Description,
		strings.Join(meta.UA.Tags, ", "),
		strings.Join(meta.EN.Tags, ", "),
		strings.Join(meta.RU.Tags, ", "),
		record.Status,
		record.ErrorKind,
		record.ErrorMessage,
	}
}

package manifest

import (
	"os"

	"github.com/parquet-go/parquet-go"
)

// ParquetRow is the flat column layout used for parquet exports.
// Nested metadata is flattened per language so warehouse queries do not
// need to unnest structs.
type ParquetRow struct {
	Index            int32    `parquet:"index"`
	OriginalFilename string   `parquet:"original_filename"`
	NewFilename      string   `parquet:"new_filename"`
	SourcePath       string   `parquet:"source_path"`
	OutputPath       string   `parquet:"output_path"`
	PosterPath       string   `parquet:"poster_path"`
	Status           string   `parquet:"status"`
	Variant          string   `parquet:"variant"`
	Degraded         bool     `parquet:"degraded"`
	DegradedReason   string   `parquet:"degraded_reason"`
	ErrorKind        string   `parquet:"error_kind"`
	ErrorMessage     string   `parquet:"error_message"`
	AltTextUA        string   `parquet:"alt_text_ua"`
	AltTextEN        string   `parquet:"alt_text_en"`
	AltTextRU        string   `parquet:"alt_text_ru"`
	TitleUA          string   `parquet:"title_ua"`
	TitleEN          string   `parquet:"title_en"`
	TitleRU          string   `parquet:"title_ru"`
	DescriptionUA    string   `parquet:"description_ua"`
	DescriptionEN    string   `parquet:"description_en"`
	DescriptionRU    string   `parquet:"description_ru"`
	TagsUA           []string `parquet:"tags_ua,list"`
	TagsEN           []string `parquet:"tags_en,list"`
	TagsRU           []string `parquet:"tags_ru,list"`
}

func writeParquetExport(path string, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[ParquetRow](file)
	rows := make([]ParquetRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, parquetRow(record))
	}
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return file.Close()
}

func parquetRow(record Record) ParquetRow {
	var meta LanguageBlock
	if record.Metadata != nil {
		meta = *record.Metadata
	}
	return ParquetRow{
		Index:            int32(record.Index),
		OriginalFilename: record.OriginalFilename,
		NewFilename:      record.NewFilename,
		SourcePath:       record.SourcePath,
		OutputPath:       record.OutputPath,
		PosterPath:       record.PosterPath,
		Status:           record.Status,
		Variant:          record.Variant,
		Degraded:         record.Degraded,
		DegradedReason:   record.DegradedReason,
		ErrorKind:        record.ErrorKind,
		ErrorMessage:     record.ErrorMessage,
		AltTextUA:        meta.UA.AltText,
		AltTextEN:        meta.EN.AltText,
		AltTextRU:        meta.RU.AltText,
		TitleUA:          meta.UA.Title,
		TitleEN:          meta.EN.Title,
		TitleRU:          meta.RU.Title,
		DescriptionUA:    meta.UA.Description,
		DescriptionEN:    meta.EN.Description,
		DescriptionRU:    meta.RU.Description,
		TagsUA:           meta.UA.Tags,
		TagsEN:           meta.EN.Tags,
		TagsRU:           meta.RU.Tags,
	}
}

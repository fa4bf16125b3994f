package dto

// MonthlyReportQuery selects the month to report on.
type MonthlyReportQuery struct {
	Month  int    `form:"month" validate:"required,min=1,max=12"`
	Year   int    `form:"year" validate:"required,min=2000,max=2100"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

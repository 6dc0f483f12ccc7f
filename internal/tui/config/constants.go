package config

// Layout constants
const (
	// ListWidthRatio is the share of the window given to the listing when a
	// preview is open
	ListWidthRatio = 0.6

	// Column widths of the listing table
	ColumnSizeWidth     = 10
	ColumnClassWidth    = 14
	ColumnModifiedWidth = 16
	ColumnNameMinWidth  = 20
	ColumnNameMaxWidth  = 80

	// Lines above and below the listing: title, breadcrumbs, status, help
	HeaderLines      = 2
	FooterLines      = 2
	TableHeaderLines = 2

	DialogWidth      = 60
	DialogLargeWidth = 76

	// PreviewChrome is what the preview pane border and title take
	PreviewChromeLines = 4
	PreviewChromeCols  = 4
)

// PreviewCacheBytes bounds the images kept on disk for previews
const PreviewCacheBytes = 64 << 20

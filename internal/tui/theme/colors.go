package theme

// Terminal-compatible color constants using ANSI standard colors
const (
	ColorWhite        = "#FFFFFF" // primary text
	ColorBrightBlack  = "#808080" // secondary text
	ColorBrightBlue   = "#5C7CFA" // primary accent
	ColorBrightCyan   = "#66D9E8" // secondary accent
	ColorBrightGreen  = "#51CF66" // success/links
	ColorBrightYellow = "#FFD43B" // warning
	ColorBrightRed    = "#FF6B6B" // error
	ColorSelectionBg  = "#4A90E2"
	ColorPanelBg      = "#1A1A1A"

	ColorFileImage    = "#74C0FC"
	ColorFileDocument = "#51CF66"
	ColorFileArchive  = "#FCC419"
	ColorFileVideo    = "#FF8787"
	ColorFileAudio    = "#DA77F2"
	ColorFileText     = "#A5D8FF"
	ColorFileCode     = "#B197FC"
	ColorFileData     = "#63E6BE"
	ColorFolder       = "#FFD43B"
)

// Tone is the severity of a status message
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneWarning
	ToneError
)

// FileColor returns the color for a file category
func FileColor(category string) string {
	switch category {
	case "folder":
		return ColorFolder
	case "image":
		return ColorFileImage
	case "document":
		return ColorFileDocument
	case "archive":
		return ColorFileArchive
	case "video":
		return ColorFileVideo
	case "audio":
		return ColorFileAudio
	case "text":
		return ColorFileText
	case "code":
		return ColorFileCode
	case "data":
		return ColorFileData
	default:
		return ColorWhite
	}
}

// FileIcon returns the glyph shown in front of a listing row
func FileIcon(category string) string {
	switch category {
	case "folder":
		return "📁"
	case "parent":
		return "⬆️"
	case "image":
		return "🖼️"
	case "document":
		return "📝"
	case "archive":
		return "📦"
	case "video":
		return "🎬"
	case "audio":
		return "🎵"
	case "code":
		return "💻"
	default:
		return "📄"
	}
}

func ToneColor(t Tone) string {
	switch t {
	case ToneError:
		return ColorBrightRed
	case ToneSuccess:
		return ColorBrightGreen
	case ToneWarning:
		return ColorBrightYellow
	default:
		return ColorBrightCyan
	}
}

func ToneIcon(t Tone) string {
	switch t {
	case ToneError:
		return "❌"
	case ToneSuccess:
		return "✅"
	case ToneWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

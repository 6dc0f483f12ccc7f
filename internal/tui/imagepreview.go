package tui

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// GraphicsProtocol is how an image reaches the terminal
type GraphicsProtocol string

const (
	ProtocolANSI  GraphicsProtocol = "ansi"
	ProtocolKitty GraphicsProtocol = "kitty"
	ProtocolITerm GraphicsProtocol = "iterm"
	ProtocolSixel GraphicsProtocol = "sixel"
)

// cell size in pixels assumed when sizing images for graphics protocols
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// DetectProtocol resolves the configured protocol. "auto" inspects the
// terminal environment and falls back to ANSI half blocks.
func DetectProtocol(setting string) GraphicsProtocol {
	switch setting {
	case "kitty":
		return ProtocolKitty
	case "iterm":
		return ProtocolITerm
	case "sixel":
		return ProtocolSixel
	case "auto":
	default:
		return ProtocolANSI
	}

	term := strings.ToLower(os.Getenv("TERM"))
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty"):
		return ProtocolKitty
	case os.Getenv("GHOSTTY_RESOURCES_DIR") != "" || termProgram == "ghostty":
		return ProtocolKitty
	case termProgram == "iterm.app" || termProgram == "wezterm":
		return ProtocolITerm
	case strings.Contains(term, "sixel") || strings.Contains(term, "mlterm"):
		return ProtocolSixel
	default:
		return ProtocolANSI
	}
}

// ImageRenderer turns a local image into terminal output of at most
// cols x rows cells. MaxCols and MaxRows cap the size when positive.
type ImageRenderer struct {
	Protocol GraphicsProtocol
	MaxCols  int
	MaxRows  int
}

func NewImageRenderer(protocol GraphicsProtocol, maxCols, maxRows int) *ImageRenderer {
	return &ImageRenderer{Protocol: protocol, MaxCols: maxCols, MaxRows: maxRows}
}

// Render decodes the image at path and draws it
func (r *ImageRenderer) Render(path string, cols, rows int) (string, error) {
	if r.MaxCols > 0 {
		cols = min(cols, r.MaxCols)
	}
	if r.MaxRows > 0 {
		rows = min(rows, r.MaxRows)
	}
	if cols <= 0 || rows <= 0 {
		return "", nil
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return r.RenderImage(img, cols, rows)
}

// RenderImage draws an already decoded image
func (r *ImageRenderer) RenderImage(img image.Image, cols, rows int) (string, error) {
	var out strings.Builder

	switch r.Protocol {
	case ProtocolKitty:
		fitted := imaging.Fit(img, cols*cellWidthPx, rows*cellHeightPx, imaging.Lanczos)
		opts := rasterm.KittyImgOpts{DstCols: uint32(cols), DstRows: uint32(rows)}
		if err := rasterm.KittyWriteImage(&out, fitted, opts); err != nil {
			return "", fmt.Errorf("kitty encode: %w", err)
		}
	case ProtocolITerm:
		fitted := imaging.Fit(img, cols*cellWidthPx, rows*cellHeightPx, imaging.Lanczos)
		if err := rasterm.ItermWriteImage(&out, fitted); err != nil {
			return "", fmt.Errorf("iterm encode: %w", err)
		}
	case ProtocolSixel:
		fitted := imaging.Fit(img, cols*cellWidthPx, rows*cellHeightPx, imaging.Lanczos)
		bounds := fitted.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, fitted, bounds.Min)
		if err := rasterm.SixelWriteImage(&out, paletted); err != nil {
			return "", fmt.Errorf("sixel encode: %w", err)
		}
	default:
		renderHalfBlocks(&out, img, cols, rows)
	}
	return out.String(), nil
}

// renderHalfBlocks draws two pixels per cell with "▀", the upper one as
// foreground and the lower one as background.
func renderHalfBlocks(out *strings.Builder, img image.Image, cols, rows int) {
	fitted := imaging.Fit(img, cols, rows*2, imaging.Box)
	b := fitted.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := fitted.NRGBAAt(x, y)
			bottom := top
			if y+1 < b.Max.Y {
				bottom = fitted.NRGBAAt(x, y+1)
			}
			fmt.Fprintf(out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		out.WriteString("\x1b[0m")
		if y+2 < b.Max.Y {
			out.WriteByte('\n')
		}
	}
}

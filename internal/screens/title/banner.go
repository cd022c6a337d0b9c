package title

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coderush/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ██████╗ ██████╗ ███████╗██████╗ ██╗   ██╗███████╗██╗  ██╗
 ██╔════╝██╔═══██╗██╔══██╗██╔════╝██╔══██╗██║   ██║██╔════╝██║  ██║
 ██║     ██║   ██║██║  ██║█████╗  ██████╔╝██║   ██║███████╗███████║
 ██║     ██║   ██║██║  ██║██╔══╝  ██╔══██╗██║   ██║╚════██║██╔══██║
 ╚██████╗╚██████╔╝██████╔╝███████╗██║  ██║╚██████╔╝███████║██║  ██║
  ╚═════╝ ╚═════╝ ╚═════╝ ╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═╝`

const bannerCompact = "C O D E R U S H"

// bannerWidth is the widest line of bannerArt.
const bannerWidth = 68

// RenderBanner returns the CODERUSH banner styled in the primary color.
// Narrow terminals get the compact form.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

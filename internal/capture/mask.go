package capture

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// maskScript returns a page function that paints every element matching the
// selectors passed to it solid black, so dynamic regions such as clocks or
// ads do not register as differences.
func maskScript() (string, error) {
	unique := make([]byte, 8)
	if _, err := rand.Read(unique); err != nil {
		return "", fmt.Errorf("failed to generate mask class: %w", err)
	}
	class := "imagediff-mask-" + hex.EncodeToString(unique)

	css := fmt.Sprintf(`.%[1]s { position: relative !important; }
.%[1]s::after {
  content: "" !important;
  position: absolute !important;
  inset: 0 !important;
  background-color: black !important;
  z-index: 2147483646 !important;
  pointer-events: none !important;
}`, class)

	return fmt.Sprintf(`(selectors) => {
	const style = document.createElement('style');
	style.textContent = %q;
	document.head.appendChild(style);
	for (const selector of selectors) {
		for (const element of document.querySelectorAll(selector)) {
			if (window.getComputedStyle(element).position === 'static') {
				element.style.position = 'relative';
			}
			element.classList.add(%q);
		}
	}
}`, css, class), nil
}

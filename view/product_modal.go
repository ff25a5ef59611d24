package view

import (
	"strings"

	"homesage_client/domain"
)

// OverlayClass marks the dimmed backdrop; a click landing on it (and
// not on the dialog itself) dismisses the modal.
const OverlayClass = "modal-overlay"

// ProductModal tracks the detail dialog: a visibility flag and the sale
// it shows. Dismissal only hides the dialog; the last-selected sale
// stays until the next open replaces it. Hooking the key and click
// events up is the consuming view's job.
type ProductModal struct {
	visible  bool
	selected *domain.Sale
}

func NewProductModal() *ProductModal {
	return &ProductModal{}
}

func (m *ProductModal) Visible() bool {
	return m.visible
}

func (m *ProductModal) Selected() *domain.Sale {
	return m.selected
}

func (m *ProductModal) OpenProductDetail(sale domain.Sale) {
	m.selected = &sale
	m.visible = true
}

func (m *ProductModal) HandleKey(key string) {
	if key == "Escape" {
		m.visible = false
	}
}

// HandleOverlayClick hides the modal when the click target's class list
// contains the overlay marker.
func (m *ProductModal) HandleOverlayClick(targetClasses string) {
	for _, class := range strings.Fields(targetClasses) {
		if class == OverlayClass {
			m.visible = false
			return
		}
	}
}

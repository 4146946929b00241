package testsupport

import (
	"github.com/goliatone/go-service-core/model"
)

// Widget is a minimal entity for exercising repositories and caches.
type Widget struct {
	model.Base
	Name  string   `json:"name" msgpack:"name"`
	Price int      `json:"price" msgpack:"price"`
	Tags  []string `json:"tags,omitempty" msgpack:"tags,omitempty"`
}

// Clone returns a copy that shares no mutable state with w.
func (w *Widget) Clone() *Widget {
	c := *w
	c.Tags = append([]string(nil), w.Tags...)
	return &c
}

// WidgetQuery is a search query over widgets.
type WidgetQuery struct {
	Name     string
	MinPrice *int
	Tags     []string
	Skip     int
	Take     int
}

// NewWidget returns an unsaved widget.
func NewWidget(name string, price int) *Widget {
	return &Widget{Name: name, Price: price}
}

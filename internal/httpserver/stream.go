package httpserver

import (
	"io"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
)

// streamProducts pushes the product list to the client as server-sent
// events whenever the catalog or a cart changes.
func (a *api) streamProducts(c *gin.Context) {
	updates, cancel := a.Feed.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		products, ok := <-updates
		if !ok {
			return false
		}
		_ = sse.Encode(w, sse.Event{Event: "products", Data: products})
		return true
	})
}

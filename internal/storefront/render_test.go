package storefront

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifgrit/Rifakat/internal/domain"
)

func TestCountLabel(t *testing.T) {
	assert.Equal(t, "0 Products", CountLabel(0))
	assert.Equal(t, "1 Product", CountLabel(1))
	assert.Equal(t, "12 Products", CountLabel(12))
}

func TestRenderView_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderView(&buf, nil))

	assert.Equal(t, "0 Products\n"+EmptyViewMessage+"\n", buf.String())
}

func TestRenderView_CardsInOrder(t *testing.T) {
	var buf bytes.Buffer
	view := []domain.Product{product("n2", "Nike", 1000), product("x1", "", 1500)}

	require.NoError(t, RenderView(&buf, view))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "2 Products\n"))
	assert.Less(t, strings.Index(out, "[n2]"), strings.Index(out, "[x1]"))
	assert.Contains(t, out, "₹1000")
	assert.Contains(t, out, "*0:Black(#ffffff)")
	assert.Contains(t, out, NoSizesMessage)
}

func TestRenderPage(t *testing.T) {
	c := NewCatalog(&stubLister{products: sneakers()})
	require.NoError(t, c.Refresh(context.Background(), "Sneakers"))
	c.SetBrands("Adidas")
	page, _ := PageFor("sneakers")
	var buf bytes.Buffer

	require.NoError(t, RenderPage(&buf, page, c))

	out := buf.String()
	assert.Contains(t, out, "Our Sneaker Collection\n"+PageDescription)
	assert.Contains(t, out, "Brands: Adidas, Nike, Other")
	assert.Contains(t, out, "1 Product\n")
	assert.Contains(t, out, "[a1]")
	assert.NotContains(t, out, "[n1]")
}

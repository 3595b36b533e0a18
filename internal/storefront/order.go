package storefront

import (
	"net/url"
	"strconv"
	"strings"
)

// OrderPhone is the shop's WhatsApp number in international format.
const OrderPhone = "919050211616"

const rule = "━━━━━━━━━━━━━━━━━━━━"

// Order is a purchase request for one product variant.
type Order struct {
	ProductName string
	Brand       string
	Category    string
	Color       string
	Size        string
	Price       float64
	ImageURL    string
}

// Message formats the order as a WhatsApp message. The brand line is
// left out for GenericBrand; the size is bold only when one was picked.
func (o Order) Message() string {
	var b strings.Builder
	b.WriteString("🛒 *NEW ORDER REQUEST*\n")
	b.WriteString(rule + "\n\n")

	b.WriteString("📦 *PRODUCT DETAILS*\n")
	b.WriteString("• Product: *" + o.ProductName + "*\n")
	if o.Brand != "" && o.Brand != GenericBrand {
		b.WriteString("• Brand: " + o.Brand + "\n")
	}
	b.WriteString("• Category: " + o.Category + "\n")
	b.WriteString("• Color: " + o.Color + "\n")
	if o.Size == SizeNotApplicable {
		b.WriteString("• Size: " + SizeNotApplicable + "\n")
	} else {
		b.WriteString("• Size: *" + o.Size + "*\n")
	}
	b.WriteString("• Price: *₹" + FormatPrice(o.Price) + "*\n\n")

	b.WriteString("📸 *Selected Image:*\n")
	b.WriteString(o.ImageURL + "\n\n")

	b.WriteString(rule + "\n")
	b.WriteString("💬 Please confirm availability and proceed with the order.")
	return b.String()
}

// WhatsAppURL returns the click-to-chat link that opens a chat with phone
// prefilled with Message.
func (o Order) WhatsAppURL(phone string) string {
	text := strings.ReplaceAll(url.QueryEscape(o.Message()), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text
}

// FormatPrice prints a price without trailing zeros: 2999, 49.5.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// Opener hands a URL to something that can show it, such as a browser.
// It does not report whether the user went on to send the message.
type Opener interface {
	Open(url string)
}

// PlaceOrder composes the card's order and opens its WhatsApp link. The
// link is returned so callers can show it as well.
func PlaceOrder(c *Card, phone string, opener Opener) (string, error) {
	order, err := c.ComposeOrder()
	if err != nil {
		return "", err
	}
	link := order.WhatsAppURL(phone)
	opener.Open(link)
	return link, nil
}

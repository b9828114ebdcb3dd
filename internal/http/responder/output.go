package responder

const contentTypeText = "text/plain; charset=utf-8"

// TextOutput is a plain-text response. huma writes a []byte body verbatim,
// bypassing content negotiation.
type TextOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func newTextOutput(body []byte) *TextOutput {
	return &TextOutput{ContentType: contentTypeText, Body: body}
}

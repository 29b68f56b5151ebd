package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeStyle(t *testing.T) {
	assert.Equal(t, "", EscapeStyle(""))
	assert.Equal(t, ".a { color: red; }", EscapeStyle(".a { color: red; }"))
	assert.Equal(t, `a<\/style><\/STYLE>`, EscapeStyle("a</style></STYLE>"))
}

func TestEscapeScript(t *testing.T) {
	assert.Equal(t, "", EscapeScript(""))
	assert.Equal(t, "console.log(1);", EscapeScript("console.log(1);"))
	assert.Equal(t, `var s = '<\/script><\/Script>';`, EscapeScript("var s = '</script></Script>';"))
	assert.Equal(t, `var c = '<\!--';`, EscapeScript("var c = '<!--';"))
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "a &amp; &lt;b&gt;", EscapeText("a & <b>"))
}

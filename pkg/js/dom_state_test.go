package js

import (
	"context"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormState(t *testing.T) {
	doc := run(t, `
		<input id="name" value="default">
		<input id="agree" type="checkbox">
		<textarea id="notes">initial</textarea>
		<select id="size"><option>S</option><option>M</option><option>L</option></select>`, `
		document.getElementById("name").value = "typed";
		var agree = document.getElementById("agree");
		agree.checked = true;
		agree.indeterminate = true;
		document.getElementById("notes").value = "edited";
		var size = document.getElementById("size");
		size.selectedIndex = 2;
		if (size.value !== "L" || !size.options[2].selected) throw new Error("select");
	`)

	name := doc.GetElementByID("name")
	assert.Equal(t, "typed", name.Value())
	assert.Equal(t, "default", name.Attr("value"), "the attribute keeps the default")
	agree := doc.GetElementByID("agree")
	assert.True(t, agree.Checked())
	assert.True(t, agree.Indeterminate())
	assert.False(t, agree.HasAttribute("checked"))
	assert.Equal(t, "edited", doc.GetElementByID("notes").Value())
	assert.Equal(t, 2, doc.GetElementByID("size").SelectedIndex())
}

func TestScrollState(t *testing.T) {
	doc := run(t, `<div id="a"></div><div id="b"></div>`, `
		var a = document.getElementById("a");
		a.scrollTop = 30;
		a.scrollTo({left: 5});
		document.getElementById("b").scrollTo(7, 8);
		if (a.scrollTop !== 30) throw new Error("scrollTop");
	`)
	a, b := doc.GetElementByID("a"), doc.GetElementByID("b")
	assert.Equal(t, 30.0, a.ScrollTop())
	assert.Equal(t, 5.0, a.ScrollLeft())
	assert.Equal(t, 8.0, b.ScrollTop())
	assert.Equal(t, 7.0, b.ScrollLeft())
}

func TestMediaState(t *testing.T) {
	doc := run(t, `<video id="v" src="clip.mp4"></video><audio id="a"></audio>`, `
		var v = document.getElementById("v");
		if (v.currentSrc !== "clip.mp4" || !v.paused) throw new Error("initial state");
		v.currentTime = 12.5;
		v.play();
		var a = document.getElementById("a");
		var rejected = false;
		a.play().catch(function () { rejected = true; });
	`)
	v := doc.GetElementByID("v")
	assert.Equal(t, 12.5, v.CurrentTime())
	assert.False(t, v.Paused())
	assert.True(t, doc.GetElementByID("a").Paused())

	_, err := New().Run(context.Background(), doc, `
		var v = document.getElementById("v");
		v.src = "other.mp4";
		if (v.currentTime !== 0 || v.currentSrc !== "other.mp4") throw new Error("reload");
	`)
	require.NoError(t, err)
}

func TestCanvasContext(t *testing.T) {
	doc := run(t, `<canvas id="c" width="20" height="20"></canvas><canvas id="d" width="4" height="4"></canvas>`, `
		var ctx = document.getElementById("c").getContext("2d");
		if (document.getElementById("c").getContext("webgl") !== null) throw new Error("webgl");
		ctx.fillStyle = "red";
		ctx.fillRect(0, 0, 10, 10);
		ctx.fillStyle = "not a colour";
		if (ctx.fillStyle !== "red") throw new Error("invalid colours are ignored");
		ctx.clearRect(0, 0, 2, 2);
		var d = document.getElementById("d");
		d.getContext("2d").fillRect(0, 0, 4, 4);
		ctx.drawImage(d, 15, 15);
		d.width = 8;
	`)
	c := doc.GetElementByID("c").ExistingCanvas()
	require.NotNil(t, c)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, color.NRGBAModel.Convert(c.Image().At(5, 5)))
	_, _, _, a := c.Image().At(1, 1).RGBA()
	assert.Zero(t, a, "cleared")
	_, _, _, a = c.Image().At(16, 16).RGBA()
	assert.NotZero(t, a, "drawn from the other canvas")

	d := doc.GetElementByID("d")
	assert.Equal(t, "8", d.Attr("width"))
	assert.Equal(t, 8, d.ExistingCanvas().Width())
}

func TestImageNaturalSize(t *testing.T) {
	doc := parse(t, `<img id="i" src="a.png">`)
	doc.GetElementByID("i").SetNaturalSize(40, 30)
	v, err := New().Run(context.Background(), doc, `
		var i = document.getElementById("i");
		i.naturalWidth + "x" + i.naturalHeight`)
	require.NoError(t, err)
	assert.Equal(t, "40x30", v)
}

package renderer

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window presents a framebuffer in an interactive window that refreshes as
// pixels complete. It must be created and run on the main OS thread.
type Window struct {
	window    *glfw.Window
	texture   uint32
	texFbo    uint32
	width     int
	height    int

	// guards the shared framebuffer between render workers and the display
	sync.Mutex
	framebuffer *image.RGBA
}

// NewWindow opens a window sized to the framebuffer
func NewWindow(framebuffer *image.RGBA, title string) (*Window, error) {
	bounds := framebuffer.Bounds()
	w := &Window{
		width:       bounds.Dx(),
		height:      bounds.Dy(),
		framebuffer: framebuffer,
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(w.width, w.height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("could not create opengl window: %w", err)
	}
	w.window = window
	w.window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("could not init opengl: %w", err)
	}

	// Texture holding the framebuffer contents
	gl.GenTextures(1, &w.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w.width), int32(w.height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach the texture to a read framebuffer so it can be blitted out
	gl.GenFramebuffers(1, &w.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, w.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, w.texture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	w.window.SetKeyCallback(func(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			window.SetShouldClose(true)
		}
	})

	return w, nil
}

// Run displays the framebuffer until the user closes the window. done is
// closed by the caller when the render finishes; the window stays open so
// the finished image remains visible.
func (w *Window) Run(done <-chan struct{}) error {
	defer glfw.Terminate()

	for !w.window.ShouldClose() {
		glfw.PollEvents()

		w.Lock()
		gl.BindTexture(gl.TEXTURE_2D, w.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w.width), int32(w.height),
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(w.framebuffer.Pix))
		w.Unlock()

		// The framebuffer's origin is top-left; flip vertically while blitting
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, w.texFbo)
		gl.BlitFramebuffer(0, int32(w.height), int32(w.width), 0,
			0, 0, int32(w.width), int32(w.height),
			gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		w.window.SwapBuffers()

		select {
		case <-done:
			// render finished, keep displaying until closed
		default:
		}
		time.Sleep(33 * time.Millisecond)
	}

	return nil
}

package ember

// Cameras is the World's camera registry. A default camera covering the
// whole stage always exists after construction or Destroy.
type Cameras struct {
	// Current is the camera returned by Game.Camera. It is cleared when
	// the camera it points to is removed.
	Current *Camera

	cameras       []*Camera
	width, height float64
}

func newCameras(width, height float64) *Cameras {
	c := &Cameras{width: width, height: height}
	c.Destroy()
	return c
}

// AddCamera registers a camera rendering into the stage rectangle
// (x, y, width, height). Its ID is its index at insertion.
func (c *Cameras) AddCamera(x, y, width, height float64) *Camera {
	cam := newCamera(len(c.cameras), Rect{X: x, Y: y, Width: width, Height: height})
	c.cameras = append(c.cameras, cam)
	return cam
}

// RemoveCamera removes the camera with the given ID and reports whether
// one was found.
func (c *Cameras) RemoveCamera(id int) bool {
	for i, cam := range c.cameras {
		if cam.ID != id {
			continue
		}
		if c.Current == cam {
			c.Current = nil
		}
		copy(c.cameras[i:], c.cameras[i+1:])
		c.cameras[len(c.cameras)-1] = nil
		c.cameras = c.cameras[:len(c.cameras)-1]
		return true
	}
	return false
}

// All returns the registered cameras in insertion order. The caller must
// not mutate the slice.
func (c *Cameras) All() []*Camera {
	return c.cameras
}

// Len returns the number of registered cameras.
func (c *Cameras) Len() int {
	return len(c.cameras)
}

// Update advances every camera by dt seconds.
func (c *Cameras) Update(dt float32) {
	for _, cam := range c.cameras {
		cam.update(dt)
	}
}

// Destroy removes every camera and installs a fresh default camera as Current.
func (c *Cameras) Destroy() {
	for i := range c.cameras {
		c.cameras[i] = nil
	}
	c.cameras = c.cameras[:0]
	c.Current = c.AddCamera(0, 0, c.width, c.height)
}

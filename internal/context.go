package internal

// Context is a value looked up through the owner chain.
type Context struct {
	defaultValue any
}

func (r *Runtime) NewContext(defaultValue any) *Context {
	return &Context{defaultValue: defaultValue}
}

// Lookup returns the value set on the closest owner, if any.
func (c *Context) Lookup() (any, bool) {
	for o := GetRuntime().tracker.CurrentOwner(); o != nil; o = o.parent {
		if v, ok := o.context[c]; ok {
			return v, true
		}
	}

	return nil, false
}

func (c *Context) Value() any {
	if v, ok := c.Lookup(); ok {
		return v
	}

	return c.defaultValue
}

// Set the value on the current owner. Without an owner there is nothing to hold it.
func (c *Context) Set(value any) {
	if o := GetRuntime().tracker.CurrentOwner(); o != nil && !o.disposed {
		o.context[c] = value
	}
}

// SetOn sets the value on a specific owner.
func (c *Context) SetOn(o *Owner, value any) {
	if !o.disposed {
		o.context[c] = value
	}
}

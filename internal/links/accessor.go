// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package links

// Accessor is one named source of an optional value.
type Accessor struct {
	Name string
	Get  func() (string, bool)
}

// Field is an accessor over a plain string field that counts as present
// when non-empty.
func Field(name, value string) Accessor {
	return Accessor{Name: name, Get: func() (string, bool) {
		return value, value != ""
	}}
}

// FirstPresent tries the accessors in order and returns the first present
// value together with the name of the accessor that supplied it.
func FirstPresent(accessors ...Accessor) (value, name string, ok bool) {
	for _, a := range accessors {
		if a.Get == nil {
			continue
		}
		if v, ok := a.Get(); ok {
			return v, a.Name, true
		}
	}
	return "", "", false
}

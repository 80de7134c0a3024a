// Package keyfunc resolves key extraction functions by name. A key function
// maps a metric name to the string hashed onto the ring; the registry lets
// configuration pick one without any dynamic code loading.
package keyfunc

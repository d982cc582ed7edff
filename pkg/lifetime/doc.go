// Package lifetime provides the tokens that tie a handler registration to
// the lifetime of the object it belongs to. An owner holds a Token; handler
// entries only hold weak, checkable references to it.
package lifetime

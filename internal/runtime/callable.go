package runtime

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/suggest"
	"lox-lang/internal/token"
	"sort"
)

// Callable is implemented by every value that can appear before '('.
// The interpreter checks Arity before calling.
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

// ---- User functions ----

// Function is a user-defined function or method together with the frame it
// was declared in.
type Function struct {
	Decl          *ast.FuncDecl
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) TypeName() string { return "function" }
func (f *Function) String() string   { return fmt.Sprintf("<fn %s>", f.Decl.Name.Lexeme) }
func (f *Function) Arity() int       { return len(f.Decl.Params) }

// Bind returns a copy of f whose closure is a new frame holding 'this'.
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", inst)
	return &Function{Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// Call runs the body in a fresh frame holding the parameters. An initializer
// always yields its instance, even after a bare 'return;'.
func (f *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	frame := interp.newFrame(f.Closure)
	for idx, param := range f.Decl.Params {
		frame.Define(param.Lexeme, args[idx])
	}

	result, err := interp.execBlock(f.Decl.Body, frame)
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		return f.Closure.GetAt(0, "this"), nil
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NilVal{}, nil
}

// ---- Native functions ----

// NativeFn is the Go signature for native functions.
type NativeFn func(args []Value) (Value, error)

// Native is a function implemented in Go.
type Native struct {
	Name   string
	Params int
	Fn     NativeFn
}

func (n *Native) TypeName() string { return "native" }
func (n *Native) String() string   { return "<native fn>" }
func (n *Native) Arity() int       { return n.Params }

func (n *Native) Call(_ *Interpreter, args []Value) (Value, error) {
	return n.Fn(args)
}

// ---- Classes and instances ----

// Class is a class value. Calling it constructs an instance.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) TypeName() string { return "class" }
func (c *Class) String() string   { return c.Name }

// FindMethod looks name up on c and then on its superclasses.
func (c *Class) FindMethod(name string) *Function {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// Arity is the arity of the initializer, or 0 without one.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call creates an instance and runs the initializer, if any, on it.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	inst := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(inst).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// methodNames lists the methods visible on instances of c.
func (c *Class) methodNames() []string {
	var names []string
	for cls := c; cls != nil; cls = cls.Superclass {
		for name := range cls.Methods {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func suggestMethod(name string, cls *Class) string {
	return suggest.Hint(name, cls.methodNames())
}

// Instance is an object created by calling a class. Its fields are the only
// runtime state that is mutated in place.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// NewInstance creates an instance of cls with no fields.
func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Fields: make(map[string]Value)}
}

func (o *Instance) TypeName() string { return "instance" }
func (o *Instance) String() string   { return o.Class.Name + " instance" }

// Get reads a property. Fields shadow methods; a method is returned bound to o.
func (o *Instance) Get(name token.Token) (Value, error) {
	if val, ok := o.Fields[name.Lexeme]; ok {
		return val, nil
	}
	if method := o.Class.FindMethod(name.Lexeme); method != nil {
		return method.Bind(o), nil
	}

	err := runtimeErr(name, "Undefined property '%s'.", name.Lexeme)
	candidates := o.Class.methodNames()
	for field := range o.Fields {
		candidates = append(candidates, field)
	}
	err.Hint = suggest.Hint(name.Lexeme, candidates)
	return nil, err
}

// Set creates or overwrites a field.
func (o *Instance) Set(name token.Token, value Value) {
	o.Fields[name.Lexeme] = value
}

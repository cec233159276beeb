package parser

// Random monster and object specifiers compile to these class/id pairs.
// The class value marks "any class"; the id value marks "any member".
const (
	RandomClass = 255
	RandomID    = -11
)

// Catalog resolves monster and object names to their ids in the game's
// static data tables. The compiler resolves names at compile time so
// programs carry only class/id pairs. A zero class byte means no class
// filter. Lookups that fail resolve to -1, which the interpreter treats
// as a random member of the class.
type Catalog interface {
	MonsterID(class byte, name string) int
	ObjectID(class byte, name string) int
}

// NopCatalog resolves nothing; every name compiles to -1. Useful for
// tests and for tools that only inspect bytecode shape.
type NopCatalog struct{}

func (NopCatalog) MonsterID(class byte, name string) int { return -1 }
func (NopCatalog) ObjectID(class byte, name string) int  { return -1 }

// README: Rider and driver identifiers.
package types

type ID string

func (id ID) String() string { return string(id) }

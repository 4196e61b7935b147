package equipment

import "fmt"

// Registry is the fixed set of equipment for a session. Membership and topics never change after
// construction.
type Registry struct {
	list          []Equipment
	byIdentifier  map[string]int
	byStatusTopic map[string]int
}

func NewRegistry(list []Equipment) (*Registry, error) {
	r := &Registry{
		list:          make([]Equipment, 0, len(list)),
		byIdentifier:  make(map[string]int, len(list)),
		byStatusTopic: make(map[string]int, len(list)),
	}

	commandTopics := map[string]struct{}{}

	for _, e := range list {
		if len(e.Identifier) == 0 {
			return nil, MissingIdentifier
		}

		if len(e.CommandTopic) == 0 {
			return nil, fmt.Errorf("%w: %s", MissingCommandTopic, e.Identifier)
		}

		if _, found := r.byIdentifier[e.Identifier]; found {
			return nil, fmt.Errorf("%w: %s", DuplicateIdentifier, e.Identifier)
		}

		if _, found := commandTopics[e.CommandTopic]; found {
			return nil, fmt.Errorf("%w: %s", DuplicateCommandTopic, e.CommandTopic)
		}

		if !e.Kind.Known() {
			e.Kind = KindOther
		}

		commandTopics[e.CommandTopic] = struct{}{}
		r.byIdentifier[e.Identifier] = len(r.list)
		r.byStatusTopic[e.StatusTopic()] = len(r.list)
		r.list = append(r.list, e)
	}

	return r, nil
}

// All returns a copy of the equipment in configured order.
func (r *Registry) All() []Equipment {
	ret := make([]Equipment, len(r.list))
	copy(ret, r.list)
	return ret
}

func (r *Registry) Len() int {
	return len(r.list)
}

func (r *Registry) Equipment(id string) (Equipment, bool) {
	if i, found := r.byIdentifier[id]; found {
		return r.list[i], true
	}

	return Equipment{}, false
}

func (r *Registry) ByStatusTopic(topic string) (Equipment, bool) {
	if i, found := r.byStatusTopic[topic]; found {
		return r.list[i], true
	}

	return Equipment{}, false
}

package cardwm

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/1broseidon/cardwm/internal/card"
)

// CardSnapshot is the exported view of one card.
type CardSnapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	AppID       string  `json:"app_id,omitempty"`
	Kind        string  `json:"kind"`
	Group       string  `json:"group,omitempty"`
	Active      bool    `json:"active"`
	Focused     bool    `json:"focused"`
	Maximized   bool    `json:"maximized"`
	Loading     bool    `json:"loading"`
	Added       bool    `json:"added"`
	Removed     bool    `json:"removed"`
	Visible     bool    `json:"visible"`
	ModalParent string  `json:"modal_parent,omitempty"`
	ModalChild  string  `json:"modal_child,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Scale       float64 `json:"scale"`
}

// GroupSnapshot is the exported view of one group.
type GroupSnapshot struct {
	ID          string   `json:"id"`
	Active      bool     `json:"active"`
	ActiveCard  string   `json:"active_card"`
	Cards       []string `json:"cards"`
	FanPosition float64  `json:"fan_position"`
	X           float64  `json:"x"`
}

// ModalSnapshot is the exported modal bookkeeping.
type ModalSnapshot struct {
	State        string `json:"state"`
	Parent       string `json:"parent,omitempty"`
	Child        string `json:"child,omitempty"`
	LastAddModal bool   `json:"last_add_modal"`
}

// Snapshot is a point-in-time view of the manager for status queries.
type Snapshot struct {
	State           string          `json:"state"`
	ActiveCard      string          `json:"active_card,omitempty"`
	ActiveGroup     string          `json:"active_group,omitempty"`
	Maximized       string          `json:"maximized,omitempty"`
	DirectRendering string          `json:"direct_rendering,omitempty"`
	Animations      int             `json:"animations"`
	InModeAnimation bool            `json:"in_mode_animation"`
	Launcher        bool            `json:"launcher_visible"`
	LauncherShown   bool            `json:"launcher_shown"`
	Lock            string          `json:"move_lock"`
	Zone            string          `json:"reorder_zone"`
	Screen          [2]int          `json:"screen"`
	Modal           ModalSnapshot   `json:"modal"`
	Groups          []GroupSnapshot `json:"groups"`
	Cards           []CardSnapshot  `json:"cards"`
}

func idString(id card.ID) string {
	if !id.Valid() {
		return ""
	}
	return id.String()
}

func groupString(id card.GroupID) string {
	if !id.Valid() {
		return ""
	}
	return id.String()
}

// Snapshot captures the current state.
func (m *Manager) Snapshot() Snapshot {
	active := m.ActiveWindow()
	s := Snapshot{
		State:           m.state.String(),
		ActiveCard:      idString(active),
		ActiveGroup:     groupString(m.ActiveGroup()),
		Maximized:       idString(m.MaximizedWindow()),
		DirectRendering: idString(m.directCard),
		Animations:      m.anims.Len(),
		InModeAnimation: m.inModeAnim,
		Launcher:        m.launcher,
		LauncherShown:   m.launcherShown,
		Lock:            m.lock.String(),
		Zone:            m.zone.String(),
		Screen:          [2]int{m.screen.Width, m.screen.Height},
		Modal: ModalSnapshot{
			State:        m.modal.State().String(),
			Parent:       idString(m.modal.Parent()),
			Child:        idString(m.modal.Child()),
			LastAddModal: m.modal.LastAddWasModal(),
		},
		Groups: make([]GroupSnapshot, 0, len(m.groups)),
	}
	for _, gid := range m.groups {
		g := m.group(gid)
		gs := GroupSnapshot{
			ID:          gid.String(),
			Active:      gid == m.activeGroup,
			ActiveCard:  idString(g.Active()),
			FanPosition: g.FanPosition(),
			X:           g.X,
		}
		for _, id := range g.Cards() {
			gs.Cards = append(gs.Cards, id.String())
		}
		s.Groups = append(s.Groups, gs)
	}
	for _, c := range m.store.Cards() {
		s.Cards = append(s.Cards, CardSnapshot{
			ID:          c.ID.String(),
			Name:        c.Name,
			AppID:       c.AppID,
			Kind:        c.Kind.String(),
			Group:       groupString(c.Group),
			Active:      c.ID == active,
			Focused:     c.Focused,
			Maximized:   c.Maximized,
			Loading:     c.Loading,
			Added:       c.Added,
			Removed:     c.Removed,
			Visible:     c.Visible,
			ModalParent: idString(c.ModalParent),
			ModalChild:  idString(c.ModalChild),
			X:           c.Transform.X,
			Y:           c.Transform.Y,
			Scale:       c.Transform.Scale,
		})
	}
	return s
}

// FindCard resolves a card reference: an id such as "card(0.1)" or the name
// of a live card.
func (m *Manager) FindCard(ref string) (card.ID, error) {
	if id, err := card.ParseID(ref); err == nil {
		if m.store.Card(id) == nil {
			return card.ID{}, fmt.Errorf("%s: %w", ref, ErrUnknownCard)
		}
		return id, nil
	}
	for _, c := range m.store.Cards() {
		if !c.Removed && strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return card.ID{}, fmt.Errorf("%s: %w", ref, ErrUnknownCard)
}

// CheckInvariants verifies the structural invariants of the manager and
// returns every violation found.
func (m *Manager) CheckInvariants() error {
	var errs []error
	if len(m.groups) > 0 {
		if m.group(m.activeGroup) == nil || m.groupIndex(m.activeGroup) < 0 {
			errs = append(errs, fmt.Errorf("groups exist but active group %s is not one of them", m.activeGroup))
		}
	} else if m.activeGroup.Valid() && m.group(m.activeGroup) != nil {
		errs = append(errs, fmt.Errorf("active group %s set without groups", m.activeGroup))
	}

	members := make(map[card.ID]card.GroupID)
	for _, gid := range m.groups {
		g := m.group(gid)
		if g == nil {
			errs = append(errs, fmt.Errorf("%s is listed but freed", gid))
			continue
		}
		if g.Empty() {
			errs = append(errs, fmt.Errorf("%s is empty", gid))
			continue
		}
		if !g.Contains(g.Active()) {
			errs = append(errs, fmt.Errorf("%s active card %s is not a member", gid, g.Active()))
		}
		limit := float64(g.Len() - 1)
		if fan := g.FanPosition(); math.Abs(fan) > limit {
			errs = append(errs, fmt.Errorf("%s fan position %.2f outside [-%v, %v]", gid, fan, limit, limit))
		}
		for _, id := range g.Cards() {
			c := m.store.Card(id)
			switch {
			case c == nil:
				errs = append(errs, fmt.Errorf("%s holds destroyed %s", gid, id))
			case c.Kind != card.KindNormal:
				errs = append(errs, fmt.Errorf("%s holds modal %s", gid, id))
			case c.Group != gid:
				errs = append(errs, fmt.Errorf("%s in %s claims %s", id, gid, c.Group))
			}
			if prev, dup := members[id]; dup {
				errs = append(errs, fmt.Errorf("%s is in both %s and %s", id, prev, gid))
			}
			members[id] = gid
		}
	}

	maximized := 0
	for _, c := range m.store.Cards() {
		if c.Maximized && !c.Removed {
			maximized++
		}
		if c.Kind == card.KindNormal && c.Group.Valid() && members[c.ID] != c.Group {
			errs = append(errs, fmt.Errorf("%s claims %s but is not a member", c.ID, c.Group))
		}
	}
	if maximized > 1 {
		errs = append(errs, fmt.Errorf("%d cards are maximized", maximized))
	}
	if m.state == StateMaximize && m.maximized != m.ActiveWindow() {
		errs = append(errs, fmt.Errorf("maximized %s is not the active card %s", m.maximized, m.ActiveWindow()))
	}

	if m.modal.Active() {
		parent, child := m.store.Card(m.modal.Parent()), m.store.Card(m.modal.Child())
		if parent == nil || !parent.IsModalParent || parent.ModalChild != m.modal.Child() {
			errs = append(errs, errors.New("modal parent links are inconsistent"))
		}
		if child == nil || child.ModalParent != m.modal.Parent() {
			errs = append(errs, errors.New("modal child links are inconsistent"))
		}
	}
	return errors.Join(errs...)
}

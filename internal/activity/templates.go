package activity

import (
	"fmt"

	"Itemizer/internal/model"
)

const ItemRemovedHeadline = "The owner of an item this organization uses has removed it from the system"

// DefaultTable is the formatter table served by the application.
func DefaultTable() Table {
	return Table{
		KindMembership: {
			Post:   membershipPost,
			Patch:  membershipPatch,
			Delete: membershipDelete,
		},
		KindItem: {
			Post: itemPost,
		},
		KindAssignment: {
			Post:   assignmentPost,
			Patch:  assignmentPatch,
			Delete: assignmentDelete,
		},
		KindOrganization: {
			Patch: organizationPatch,
		},
		KindRequest: {
			Post:   requestPost,
			Delete: requestDelete,
		},
	}
}

// ItemRemoved is written to every organization that used a deleted item.
func ItemRemoved(item *model.Item) []string {
	return []string{
		ItemRemovedHeadline,
		"Name: " + item.Name,
		"Part #: " + item.PartNumber,
	}
}

func OwnershipTransferred(from, to *model.User) []string {
	return []string{
		fmt.Sprintf("User, %q, has transferred ownership of this organization to user, %q.", from.Username, to.Username),
	}
}

func membershipPost(subject any, _ *model.User) ([]string, error) {
	m, err := membership(subject)
	if err != nil {
		return nil, err
	}
	if m.Role == model.RoleOwner {
		if m.Organization == nil {
			return nil, fmt.Errorf("%w: membership without organization", ErrUnexpectedType)
		}
		return []string{fmt.Sprintf("User, %q, created a new organization: %q.", m.User.Username, m.Organization.Name)}, nil
	}
	return []string{fmt.Sprintf("User, %q, joined this organization.", m.User.Username)}, nil
}

func membershipPatch(subject any, actor *model.User) ([]string, error) {
	m, err := membership(subject)
	if err != nil {
		return nil, err
	}
	if err := needActor(actor); err != nil {
		return nil, err
	}
	if m.Role == model.RoleRegular {
		return []string{fmt.Sprintf("User, %q, has been demoted to REGULAR by admin, %q.", m.User.Username, actor.Username)}, nil
	}
	return []string{fmt.Sprintf("User, %q, has been promoted to %s by admin, %q.", m.User.Username, m.Role, actor.Username)}, nil
}

func membershipDelete(subject any, actor *model.User) ([]string, error) {
	m, err := membership(subject)
	if err != nil {
		return nil, err
	}
	if err := needActor(actor); err != nil {
		return nil, err
	}
	if actor.ID == m.UserID {
		return []string{fmt.Sprintf("User, %q, left this organization.", m.User.Username)}, nil
	}
	return []string{fmt.Sprintf("Admin, %q, removed user, %q, from this organization.", actor.Username, m.User.Username)}, nil
}

func itemPost(subject any, actor *model.User) ([]string, error) {
	a, err := assignment(subject)
	if err != nil {
		return nil, err
	}
	if err := needActor(actor); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("A new item has been added by user, %q, to this organization", actor.Username),
		"Name: " + a.Item.Name,
		"Part #: " + a.Item.PartNumber,
	}, nil
}

func assignmentPost(subject any, actor *model.User) ([]string, error) {
	a, err := assignment(subject)
	if err != nil {
		return nil, err
	}
	if err := needActor(actor); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("An item has been assigned by user, %q, to this organization", actor.Username),
		"Name: " + a.Item.Name,
		"Part #: " + a.Item.PartNumber,
	}, nil
}

func assignmentPatch(subject any, _ *model.User) ([]string, error) {
	a, err := assignment(subject)
	if err != nil {
		return nil, err
	}
	return []string{
		"Item assignment updated.",
		"Name: " + a.Item.Name,
		fmt.Sprintf("Current quantity: %d", a.CurrentQuantity),
		fmt.Sprintf("Enough threshold: %d", a.EnoughThreshold),
	}, nil
}

func assignmentDelete(subject any, actor *model.User) ([]string, error) {
	a, err := assignment(subject)
	if err != nil {
		return nil, err
	}
	if err := needActor(actor); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf("An item has been unassigned by admin, %q, from this organization", actor.Username),
		"Name: " + a.Item.Name,
		"Part #: " + a.Item.PartNumber,
	}, nil
}

func organizationPatch(subject any, _ *model.User) ([]string, error) {
	if _, ok := subject.(*model.Organization); !ok {
		return nil, fmt.Errorf("%w: want organization, got %T", ErrUnexpectedType, subject)
	}
	return []string{"The owner has updated the name/description/logo/banner of this organization"}, nil
}

func requestPost(subject any, _ *model.User) ([]string, error) {
	r, err := request(subject)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("User, %q, has requested to join this organization.", r.User.Username)}, nil
}

func requestDelete(subject any, actor *model.User) ([]string, error) {
	r, err := request(subject)
	if err != nil {
		return nil, err
	}
	if err := needActor(actor); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("The request from user, %q, to join this organization has been declined by admin, %q.", r.User.Username, actor.Username)}, nil
}

func membership(subject any) (*model.Membership, error) {
	m, ok := subject.(*model.Membership)
	if !ok {
		return nil, fmt.Errorf("%w: want membership, got %T", ErrUnexpectedType, subject)
	}
	if m.User == nil {
		return nil, fmt.Errorf("%w: membership without user", ErrUnexpectedType)
	}
	return m, nil
}

func assignment(subject any) (*model.Assignment, error) {
	a, ok := subject.(*model.Assignment)
	if !ok {
		return nil, fmt.Errorf("%w: want assignment, got %T", ErrUnexpectedType, subject)
	}
	if a.Item == nil {
		return nil, fmt.Errorf("%w: assignment without item", ErrUnexpectedType)
	}
	return a, nil
}

func request(subject any) (*model.Request, error) {
	r, ok := subject.(*model.Request)
	if !ok {
		return nil, fmt.Errorf("%w: want request, got %T", ErrUnexpectedType, subject)
	}
	if r.User == nil {
		return nil, fmt.Errorf("%w: request without user", ErrUnexpectedType)
	}
	return r, nil
}

func needActor(actor *model.User) error {
	if actor == nil {
		return fmt.Errorf("%w: no acting user", ErrUnexpectedType)
	}
	return nil
}

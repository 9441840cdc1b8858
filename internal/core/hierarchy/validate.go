package hierarchy

import (
	"context"
	"fmt"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/store"
)

// Role is the position the proposed node would take relative to the
// subject.
type Role int

const (
	RoleSub Role = iota
	RoleSur
)

// Result holds one flag per rule. A zero Result is a legal assignment.
type Result struct {
	SubjectMissing   bool
	CandidateMissing bool
	IsSelf           bool
	// The candidate (child) already sits under a different parent.
	IsAssignedToSur bool
	// The candidate has children and the subject is too deep to take them.
	IsSur bool
	// The candidate has grandchildren.
	IsSurSur bool
	// The subject is a sub and the hierarchy allows only two generations.
	IsSubjectSub bool
	// The subject is a sub-sub and cannot have children at all.
	IsSubjectSubSub bool
	// The child is already the parent or grandparent of the parent.
	IsSurOfSubject    bool
	IsSurSurOfSubject bool
}

func (r Result) Valid() bool {
	return r == Result{}
}

// Validator checks structural edits against one hierarchy.
type Validator struct {
	Hierarchy Hierarchy
}

func NewValidator(h Hierarchy) *Validator {
	return &Validator{Hierarchy: h}
}

// ValidateAssignment checks whether candidateUUID may become a sub (or,
// with RoleSur, the direct sur) of subjectUUID. It reads only.
func (v *Validator) ValidateAssignment(ctx context.Context, tx store.Tx, subjectUUID, candidateUUID string, role Role) (Result, error) {
	parentUUID, childUUID := subjectUUID, candidateUUID
	if role == RoleSur {
		parentUUID, childUUID = candidateUUID, subjectUUID
	}

	var res Result
	parent, parentOK, err := v.Hierarchy.LoadOptional(ctx, tx, parentUUID)
	if err != nil {
		return Result{}, err
	}
	child, childOK, err := v.Hierarchy.LoadOptional(ctx, tx, childUUID)
	if err != nil {
		return Result{}, err
	}
	if parentOK && parent.Subject.Kind != v.Hierarchy.Kind {
		parentOK = false
	}
	if childOK && child.Subject.Kind != v.Hierarchy.Kind {
		childOK = false
	}

	subjectOK, candidateOK := parentOK, childOK
	if role == RoleSur {
		subjectOK, candidateOK = childOK, parentOK
	}
	res.SubjectMissing = !subjectOK
	res.CandidateMissing = !candidateOK
	if !parentOK || !childOK {
		return res, nil
	}

	if parentUUID == childUUID {
		res.IsSelf = true
		return res, nil
	}

	for i, sur := range parent.Surs {
		if sur.UUID != childUUID {
			continue
		}
		if i == 0 {
			res.IsSurOfSubject = true
		} else {
			res.IsSurSurOfSubject = true
		}
	}

	if existing, ok := child.Sur(); ok && existing.UUID != parentUUID {
		res.IsAssignedToSur = true
	}

	ceiling := v.Hierarchy.Ceiling
	depth, height := parent.Depth(), child.Height()
	if depth+height > ceiling {
		switch {
		case depth >= 3:
			res.IsSubjectSubSub = true
		case depth >= 2 && ceiling == 2:
			res.IsSubjectSub = true
		}
		switch {
		case height >= 3:
			res.IsSurSur = true
		case height >= 2:
			res.IsSur = true
		}
	}
	return res, nil
}

// Violation turns the highest-priority flag into an error kind and a
// message. ok is false when the result is valid.
func (v *Validator) Violation(r Result) (kind apperror.Kind, message string, ok bool) {
	noun := v.Hierarchy.Noun
	switch {
	case r.SubjectMissing:
		return apperror.KindReferenceNotFound, fmt.Sprintf("Subject %s does not exist", noun), true
	case r.CandidateMissing:
		return apperror.KindReferenceNotFound, fmt.Sprintf("Referenced %s does not exist", noun), true
	case r.IsSelf:
		return apperror.KindStructuralViolation, fmt.Sprintf("Instance cannot form association with itself as sub-%s", noun), true
	case r.IsSurOfSubject:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-%s is the sur-%s of this %s", noun, noun, noun), true
	case r.IsSurSurOfSubject:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-%s is the sur-sur-%s of this %s", noun, noun, noun), true
	case r.IsAssignedToSur:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-%s is already assigned to another sur-%s", noun, noun), true
	case r.IsSubjectSubSub:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-sub-%s cannot form association with a sub-%s", noun, noun), true
	case r.IsSubjectSub:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-%s cannot form association with a sub-%s", noun, noun), true
	case r.IsSurSur:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-%s is a sur-sur-%s", noun, noun), true
	case r.IsSur:
		return apperror.KindStructuralViolation, fmt.Sprintf("Sub-%s is a sur-%s and this %s is already a sub-%s", noun, noun, noun, noun), true
	}
	return "", "", false
}

package workflow

import (
	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// Validate checks that blocks and connections are well-formed input for a
// canvas. It reports the first problem found.
//
// Checked:
//   - ids are valid and unique per kind (joint ids across all blocks)
//   - block and joint types are known
//   - every joint's BlockID matches its owning block
//   - all coordinates are finite
//   - connections name both a source and a target joint
//
// Connections whose joints do not exist are not rejected; they are dangling
// and simply not drawn. Use [DanglingConnections] to list them.
func Validate(blocks []Block, conns []Connection) error {
	blockIDs := make(map[string]bool, len(blocks))
	jointIDs := make(map[string]bool)

	for _, b := range blocks {
		if err := errors.ValidateID("block", b.ID); err != nil {
			return err
		}
		if blockIDs[b.ID] {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate block id %q", b.ID)
		}
		blockIDs[b.ID] = true

		if !b.Type.Valid() {
			return errors.New(errors.ErrCodeInvalidGraph, "block %q: unknown type %q", b.ID, b.Type)
		}
		if !b.Position.IsFinite() {
			return errors.New(errors.ErrCodeInvalidGraph, "block %q: position is not finite", b.ID)
		}

		for _, j := range b.Joints {
			if err := validateJoint(b, j, jointIDs); err != nil {
				return err
			}
			jointIDs[j.ID] = true
		}
	}

	connIDs := make(map[string]bool, len(conns))
	for _, c := range conns {
		if err := errors.ValidateID("connection", c.ID); err != nil {
			return err
		}
		if connIDs[c.ID] {
			return errors.New(errors.ErrCodeInvalidGraph, "duplicate connection id %q", c.ID)
		}
		connIDs[c.ID] = true

		if c.SourceJointID == "" || c.TargetJointID == "" {
			return errors.New(errors.ErrCodeInvalidGraph, "connection %q: source and target joints are required", c.ID)
		}
	}

	return nil
}

func validateJoint(b Block, j Joint, seen map[string]bool) error {
	if err := errors.ValidateID("joint", j.ID); err != nil {
		return err
	}
	if seen[j.ID] {
		return errors.New(errors.ErrCodeInvalidGraph, "duplicate joint id %q", j.ID)
	}
	if j.BlockID != b.ID {
		return errors.New(errors.ErrCodeInvalidGraph, "joint %q: block_id %q does not match owning block %q", j.ID, j.BlockID, b.ID)
	}
	if !j.Type.Valid() {
		return errors.New(errors.ErrCodeInvalidGraph, "joint %q: unknown type %q", j.ID, j.Type)
	}
	if !j.Position.IsFinite() {
		return errors.New(errors.ErrCodeInvalidGraph, "joint %q: position is not finite", j.ID)
	}
	if j.RelativePosition != nil && !j.RelativePosition.IsFinite() {
		return errors.New(errors.ErrCodeInvalidGraph, "joint %q: relative position is not finite", j.ID)
	}
	return nil
}

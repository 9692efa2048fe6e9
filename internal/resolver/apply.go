package resolver

import (
	"context"
	"fmt"
	"os"

	"resolverd/internal/cache"
	"resolverd/internal/domain"
)

// ApplyResult reports what happened when a plan was applied.
type ApplyResult struct {
	Plan    *domain.PlannedUpdate
	Applied bool
	Err     error
}

// ApplyPlan implements spec.md §4.7's non-dry-run apply semantics: move,
// then write tags; on tag-write failure, roll back the move; on success,
// record the move and mark the file processed.
func ApplyPlan(ctx context.Context, store *cache.Store, relocator Relocator, tagio TagIO, plan *domain.PlannedUpdate) ApplyResult {
	if plan == nil || !plan.HasChanges() {
		return ApplyResult{Plan: plan, Applied: false}
	}

	sourcePath := plan.Meta.Path
	targetPath := plan.TargetPath
	if targetPath == "" {
		targetPath = sourcePath
	}

	moved := false
	if targetPath != sourcePath {
		if err := relocator.Move(sourcePath, targetPath); err != nil {
			return ApplyResult{Plan: plan, Applied: false, Err: fmt.Errorf("apply: move %s -> %s: %w", sourcePath, targetPath, err)}
		}
		moved = true
	}

	if len(plan.TagChanges) > 0 {
		if err := tagio.WriteTags(targetPath, plan.TagChanges); err != nil {
			if moved {
				if rollbackErr := relocator.Move(targetPath, sourcePath); rollbackErr != nil {
					return ApplyResult{Plan: plan, Applied: false, Err: fmt.Errorf("apply: tag write failed (%v) and rollback failed: %w", err, rollbackErr)}
				}
			}
			return ApplyResult{Plan: plan, Applied: false, Err: fmt.Errorf("apply: write tags at %s: %w", targetPath, err)}
		}
	}

	if moved {
		if err := store.RecordMove(ctx, sourcePath, targetPath); err != nil {
			return ApplyResult{Plan: plan, Applied: true, Err: err}
		}
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return ApplyResult{Plan: plan, Applied: true, Err: err}
	}
	if err := store.MarkProcessed(ctx, targetPath, info.ModTime().UnixNano(), info.Size()); err != nil {
		return ApplyResult{Plan: plan, Applied: true, Err: err}
	}

	plan.Meta.Path = targetPath
	plan.TargetPath = targetPath
	plan.TagChanges = nil

	return ApplyResult{Plan: plan, Applied: true}
}

// RollbackMoves replays store's recorded moves in reverse, restoring
// every file to its source path — the explicit "moves rollback" CLI
// operation of spec.md §4.7.
func RollbackMoves(ctx context.Context, store *cache.Store, relocator Relocator, limit int) (restored int, err error) {
	moves, err := store.RecentMoves(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, m := range moves {
		if err := relocator.Move(m.TargetPath, m.SourcePath); err != nil {
			return restored, fmt.Errorf("rollback: restore %s -> %s: %w", m.TargetPath, m.SourcePath, err)
		}
		restored++
	}
	return restored, nil
}

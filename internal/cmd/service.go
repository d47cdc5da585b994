// Package cmd contains the CLI command implementations.
package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/magegihk/modinstaller/internal/backup"
	"github.com/magegihk/modinstaller/internal/catalog"
	"github.com/magegihk/modinstaller/internal/config"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
	"github.com/magegihk/modinstaller/internal/install"
	"github.com/magegihk/modinstaller/internal/interactive"
	"github.com/magegihk/modinstaller/internal/logging"
	"github.com/magegihk/modinstaller/internal/output"
	"github.com/magegihk/modinstaller/internal/resolve"
	"github.com/magegihk/modinstaller/internal/state"
	"github.com/magegihk/modinstaller/internal/toggle"
	"github.com/magegihk/modinstaller/internal/types"
)

// ServiceOptions configures how the service confirms and plans.
type ServiceOptions struct {
	AssumeYes     bool           // Skip every confirmation
	Offline       bool           // Use the cached manifest only
	Policy        resolve.Policy // Dependency expansion policy
	KeepSnapshots int            // Prune snapshots to this many after each mutation; 0 keeps all
}

// ModService orchestrates the engine components. Every mutating operation
// follows the same pipeline: load catalog, read state, plan, confirm,
// snapshot, apply, then rebuild state from scratch.
type ModService struct {
	loader    *catalog.Loader
	reader    state.Reader
	installer *install.Installer
	toggler   *toggle.Toggler
	snapshots *backup.Manager
	prompter  *interactive.Prompter
	paths     config.Paths
	logger    *log.Logger
	opts      ServiceOptions
}

// NewModServiceWithDeps creates a service with custom dependencies (for testing).
func NewModServiceWithDeps(
	loader *catalog.Loader,
	reader state.Reader,
	installer *install.Installer,
	snapshots *backup.Manager,
	prompter *interactive.Prompter,
	paths config.Paths,
	logger *log.Logger,
	opts ServiceOptions,
) *ModService {
	return &ModService{
		loader:    loader,
		reader:    reader,
		installer: installer,
		toggler:   &toggle.Toggler{Logger: logger},
		snapshots: snapshots,
		prompter:  prompter,
		paths:     paths,
		logger:    logging.OrDiscard(logger),
		opts:      opts,
	}
}

// Report is the outcome of one mutating command.
type Report struct {
	Action    string             `json:"action" yaml:"action"`
	Mod       string             `json:"mod,omitempty" yaml:"mod,omitempty"`
	Plan      []string           `json:"plan,omitempty" yaml:"plan,omitempty"`
	Result    *install.Result    `json:"result,omitempty" yaml:"result,omitempty"`
	Outcomes  []*install.Outcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Moved     []string           `json:"moved,omitempty" yaml:"moved,omitempty"`
	Removed   []string           `json:"removed,omitempty" yaml:"removed,omitempty"`
	Snapshot  string             `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	State     types.InstallState `json:"state,omitempty" yaml:"state,omitempty"`
	API       bool               `json:"api_installed" yaml:"api_installed"`
	Cancelled bool               `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Message   string             `json:"message,omitempty" yaml:"message,omitempty"`
}

func (r *Report) String() string {
	var b strings.Builder

	switch {
	case r.Cancelled:
		b.WriteString("Cancelled.")
		return b.String()
	case r.Message != "":
		b.WriteString(r.Message)
	}

	if r.Result != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Result.String())
	}
	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "\n  %s (%s): %s", o.Name, o.Layout, strings.Join(o.ManagedFiles, ", "))
		if len(o.BackedUp) > 0 {
			fmt.Fprintf(&b, "\n    backed up %d vanilla files", len(o.BackedUp))
		}
	}
	for _, m := range r.Moved {
		fmt.Fprintf(&b, "\n  moved %s", m)
	}
	for _, p := range r.Removed {
		fmt.Fprintf(&b, "\n  removed %s", p)
	}
	if r.Mod != "" && r.State != "" {
		fmt.Fprintf(&b, "\n%s is now %s", r.Mod, r.State)
	}
	return strings.TrimPrefix(b.String(), "\n")
}

// session is the catalog and state one command works against.
type session struct {
	catalog *catalog.Catalog
	state   *state.State
	offline bool
}

// LoadCatalog fetches the manifest. When the fetch fails the user is offered
// the cached copy; --offline takes it directly.
func (s *ModService) LoadCatalog(ctx context.Context) (*catalog.Result, error) {
	res, err := s.loader.Load(ctx, s.opts.Offline)
	if err == nil {
		return res, nil
	}
	if s.opts.Offline || moderrors.KindOf(err) != moderrors.KindManifest {
		return nil, err
	}

	s.logger.Warn("manifest unavailable", "err", err)
	if !s.confirm("Manifest could not be loaded. Continue with the cached copy?") {
		return nil, err
	}
	return s.loader.Cached()
}

// ReadState scans the mod directories against cat.
func (s *ModService) ReadState(cat *catalog.Catalog) (*state.State, error) {
	st, err := s.reader.Read(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to read installed mods: %w", err)
	}
	return st, nil
}

func (s *ModService) open(ctx context.Context) (*session, error) {
	res, err := s.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.ReadState(res.Catalog)
	if err != nil {
		return nil, err
	}
	return &session{catalog: res.Catalog, state: st, offline: res.Offline}, nil
}

// Status reports every catalog mod and every local mod.
func (s *ModService) Status(ctx context.Context) (*output.StatusReport, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	report := output.NewStatusReport(sess.catalog, sess.state)
	report.Offline = sess.offline
	return report, nil
}

// PlanInstall computes the install plan for name without touching disk.
func (s *ModService) PlanInstall(cat *catalog.Catalog, st *state.State, name string) (*resolve.Plan, error) {
	return resolve.Resolver{Policy: s.opts.Policy}.Plan(cat, st, name)
}

// Install plans, confirms and installs name with its dependencies.
func (s *ModService) Install(ctx context.Context, name string) (*Report, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	plan, err := s.PlanInstall(sess.catalog, sess.state, name)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("install plan", "plan", plan)

	plan, ok := s.approvePlan(plan)
	report := &Report{Action: "install", Mod: name}
	if plan != nil {
		report.Plan = plan.Names()
	}
	if !ok {
		report.Cancelled = true
		return report, nil
	}

	report.Snapshot = s.snapshot(sess.state, "before install "+name)

	result, applyErr := s.installer.Apply(ctx, sess.catalog, plan)
	report.Result = result

	if applyErr != nil {
		return report, s.failed(sess.catalog, report, applyErr)
	}
	return report, s.rescan(sess.catalog, report)
}

// InstallFiles installs local files: archives through the archive installer,
// anything else copied into the mods directory as-is.
func (s *ModService) InstallFiles(ctx context.Context, paths []string) (*Report, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Action: "install-file"}
	if !s.confirm("Install %s?", strings.Join(paths, ", ")) {
		report.Cancelled = true
		return report, nil
	}
	report.Snapshot = s.snapshot(sess.state, "before manual install")

	for _, path := range paths {
		var outcome *install.Outcome
		if install.IsArchive(path) {
			base := filepath.Base(path)
			outcome, err = s.installer.InstallArchive(ctx, strings.TrimSuffix(base, filepath.Ext(base)), path, false)
		} else {
			outcome, err = s.installer.InstallFile(path)
		}
		if err != nil {
			return report, s.failed(sess.catalog, report, err)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, s.rescan(sess.catalog, report)
}

// Uninstall deletes a mod's files from the active and disabled directories.
// Uninstalling a mod that is not present does nothing.
func (s *ModService) Uninstall(ctx context.Context, name string) (*Report, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Action: "uninstall", Mod: name}
	if !sess.state.Installed(name) {
		report.State = types.StateNotInstalled
		report.Message = fmt.Sprintf("%s is not installed", name)
		return report, nil
	}
	if !s.confirm("Uninstall %s?", name) {
		report.Cancelled = true
		return report, nil
	}

	report.Snapshot = s.snapshot(sess.state, "before uninstall "+name)

	removed, err := s.installer.Uninstall(toggle.Files(sess.catalog, name))
	report.Removed = removed
	if err != nil {
		return report, s.failed(sess.catalog, report, err)
	}
	return report, s.rescan(sess.catalog, report)
}

// Enable moves a disabled mod back into the active directory.
func (s *ModService) Enable(ctx context.Context, name string) (*Report, error) {
	return s.toggle(ctx, name, true)
}

// Disable moves an enabled mod into the disabled directory.
func (s *ModService) Disable(ctx context.Context, name string) (*Report, error) {
	return s.toggle(ctx, name, false)
}

func (s *ModService) toggle(ctx context.Context, name string, enable bool) (*Report, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	action := "disable"
	if enable {
		action = "enable"
	}
	report := &Report{Action: action, Mod: name}

	if !sess.state.Installed(name) {
		report.State = types.StateNotInstalled
		report.Message = fmt.Sprintf("%s is not installed", name)
		return report, nil
	}

	report.Snapshot = s.snapshot(sess.state, fmt.Sprintf("before %s %s", action, name))

	files := toggle.Files(sess.catalog, name)
	var res *toggle.Result
	if enable {
		res, err = s.toggler.Enable(files, s.paths.ModsDir, s.paths.DisabledDir)
	} else {
		res, err = s.toggler.Disable(files, s.paths.ModsDir, s.paths.DisabledDir)
	}
	if res != nil {
		report.Moved = res.Moved
	}
	if err != nil {
		return report, s.failed(sess.catalog, report, err)
	}
	return report, s.rescan(sess.catalog, report)
}

// Update reinstalls stale mods. With no names every stale mod is updated.
// Dependencies are not expanded.
func (s *ModService) Update(ctx context.Context, names []string) (*Report, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Action: "update"}
	targets := sess.state.Stale()
	if len(names) > 0 {
		targets = nil
		for _, name := range names {
			if _, ok := sess.catalog.Get(name); !ok {
				return nil, moderrors.UnknownMod(name)
			}
			if sess.state.Status(name) != types.StateStale {
				s.logger.Info("already up to date", "mod", name)
				continue
			}
			targets = append(targets, name)
		}
	}
	if len(targets) == 0 {
		report.Message = "All mods are up to date."
		return report, nil
	}

	report.Plan = targets
	if !s.confirm("Update %s?", strings.Join(targets, ", ")) {
		report.Cancelled = true
		return report, nil
	}

	report.Snapshot = s.snapshot(sess.state, "before update")

	// Updates are independent, so each is an optional step and one failure
	// does not stop the rest.
	plan := &resolve.Plan{}
	for _, name := range targets {
		plan.Steps = append(plan.Steps, resolve.Step{Kind: types.StepOptional, Name: name})
	}
	result, err := s.installer.Apply(ctx, sess.catalog, plan)
	report.Result = result
	if err != nil {
		return report, s.failed(sess.catalog, report, err)
	}
	return report, s.rescan(sess.catalog, report)
}

// APIStatus describes the installed API against the catalog.
type APIStatus struct {
	Status      string `json:"status" yaml:"status"`
	Installed   bool   `json:"installed" yaml:"installed"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Expected    string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Link        string `json:"link,omitempty" yaml:"link,omitempty"`
}

func (a *APIStatus) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Modding API: %s", a.Status)
	if a.Fingerprint != "" {
		fmt.Fprintf(&b, "\n  installed: %s", a.Fingerprint)
	}
	if a.Expected != "" {
		fmt.Fprintf(&b, "\n  expected:  %s", a.Expected)
	}
	return b.String()
}

// APIStatus reports whether the installed API matches the catalog.
func (s *ModService) APIStatus(ctx context.Context) (*APIStatus, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	report := output.NewStatusReport(sess.catalog, sess.state)
	return &APIStatus{
		Status:      report.API,
		Installed:   sess.state.APIInstalled,
		Fingerprint: sess.state.APIFingerprint,
		Expected:    sess.catalog.APIFingerprint,
		Link:        sess.catalog.APILink,
	}, nil
}

// InstallAPI installs the API payload unless the installed one already
// matches the catalog. force reinstalls regardless.
func (s *ModService) InstallAPI(ctx context.Context, force bool) (*Report, error) {
	sess, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Action: "api-install", Mod: catalog.APIName, API: sess.state.APIInstalled}
	if sess.state.APIInstalled && !force {
		report.Message = "Modding API is already installed."
		return report, nil
	}

	target, err := install.TargetFor(sess.catalog, catalog.APIName)
	if err != nil {
		return nil, moderrors.UnknownMod(catalog.APIName).
			WithSuggestion("The manifest has no Modding API entry; run 'modinstaller catalog refresh'")
	}
	if !s.confirm("Install %s?", catalog.APIName) {
		report.Cancelled = true
		return report, nil
	}

	report.Snapshot = s.snapshot(sess.state, "before api install")

	outcome, err := s.installer.Install(ctx, target)
	if outcome != nil {
		report.Outcomes = []*install.Outcome{outcome}
	}
	if err != nil {
		return report, s.failed(sess.catalog, report, err)
	}
	return report, s.rescan(sess.catalog, report)
}

// RefreshCatalog forces a manifest fetch and rewrites the cache.
func (s *ModService) RefreshCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return s.loader.Fetch(ctx)
}

// Vanilla lists the .vanilla backups under the install root.
func (s *ModService) Vanilla() ([]install.Backup, error) {
	return install.ListBackups(s.paths.InstallRoot)
}

// RestoreVanilla restores the named backups, or all of them when none are
// named.
func (s *ModService) RestoreVanilla(paths []string) ([]install.Backup, error) {
	if !s.confirm("Restore vanilla files under %s?", s.paths.InstallRoot) {
		return nil, nil
	}
	return install.RestoreBackups(s.paths.InstallRoot, paths...)
}

// approvePlan asks about optional steps and the install itself. Optional
// steps are all kept when confirmations are skipped.
func (s *ModService) approvePlan(plan *resolve.Plan) (*resolve.Plan, bool) {
	if s.opts.AssumeYes {
		return plan, true
	}
	if s.prompter == nil {
		return plan, false
	}
	return s.prompter.PromptForPlan(plan)
}

func (s *ModService) confirm(format string, args ...interface{}) bool {
	if s.opts.AssumeYes {
		return true
	}
	if s.prompter == nil {
		return false
	}
	return s.prompter.Confirm(format, args...)
}

// snapshot records st before a mutation. A failed snapshot is a warning and
// never blocks the mutation.
func (s *ModService) snapshot(st *state.State, note string) string {
	if s.snapshots == nil {
		return ""
	}
	snap, err := s.snapshots.Create(st, note)
	if err != nil {
		s.logger.Warn("failed to create snapshot", "err", err)
		return ""
	}
	s.logger.Debug("snapshot created", "id", snap.ID)

	if s.opts.KeepSnapshots > 0 {
		if _, err := s.snapshots.Prune(s.opts.KeepSnapshots); err != nil {
			s.logger.Warn("failed to prune snapshots", "err", err)
		}
	}
	return snap.ID
}

// failed rescans after a mutation that stopped part way, so the report shows
// what is on disk, and returns err.
func (s *ModService) failed(cat *catalog.Catalog, report *Report, err error) error {
	if rerr := s.rescan(cat, report); rerr != nil {
		s.logger.Warn("failed to rescan after error", "err", rerr)
	}
	return err
}

// rescan rebuilds state from disk after a mutation and records the result.
func (s *ModService) rescan(cat *catalog.Catalog, report *Report) error {
	st, err := s.ReadState(cat)
	if err != nil {
		return err
	}
	if report.Mod != "" && !cat.IsAPI(report.Mod) {
		report.State = st.Status(report.Mod)
	}
	report.API = st.APIInstalled
	return nil
}

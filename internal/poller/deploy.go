package poller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/errgroup"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
	"onmodulus/xervo/internal/progress"
)

// DeployAPI is the part of the resource client a deploy polls.
type DeployAPI interface {
	Get(ctx context.Context, id string) (*domain.Project, error)
	DeployLogs(ctx context.Context, id string) ([]librarian.LogSource, error)
	UploadProgress(ctx context.Context, id string) (float64, error)
}

// Deploy describes one deploy of a project.
type Deploy struct {
	ProjectID   string
	ProjectName string

	// Upload sends the archive. Nil skips the upload phase.
	Upload func(ctx context.Context) error

	// Bar shows upload progress. Nil disables the progress loop.
	Bar progress.Bar

	// ShowLogs enables the log-tail loop.
	ShowLogs bool
}

const (
	msgUploading = "Uploading project..."
	msgDeploying = "Deploying project..."
)

// Deploy uploads (optionally) and waits for a project to come up.
//
// The upload is the request that starts the deploy, so while it is in
// flight only the upload-progress loop runs, feeding the bar; its fetch
// errors are logged at debug and dropped. Once the upload is accepted the
// session moves to polling and two loops share it: the status loop
// decides termination and the log-tail loop prints new deploy output
// while the project is deploying. Only the status loop can fail the
// deploy.
//
// The project is done when it reports running and the status seen before
// that was not uploading. Polling starts from an assumed uploading
// status, so a running status left over from the previous deploy is
// never mistaken for the new one.
func (p *Poller) Deploy(ctx context.Context, api DeployAPI, d Deploy) (*domain.Project, error) {
	name := d.ProjectName
	if name == "" {
		name = d.ProjectID
	}
	sess := NewSession(fmt.Sprintf("project %q", name), domain.StatusUploading)
	log := p.opts.Logger.With("project", d.ProjectID)

	if d.Upload != nil {
		if err := p.upload(ctx, api, d, sess, log); err != nil {
			err = fmt.Errorf("uploading %s: %w", name, err)
			sess.Finish(err)
			p.stopIndicator()
			return nil, err
		}
		sess.Observe(domain.StatusUploading)
	}
	p.indicator.Start(messageFor(sess.Status()))

	g, gctx := errgroup.WithContext(ctx)
	logsCtx, stopLogs := context.WithCancel(gctx)
	defer stopLogs()

	var project *domain.Project
	g.Go(func() error {
		defer stopLogs()
		var err error
		project, err = run(gctx, p, sess, Job[*domain.Project]{
			Fetch: func(ctx context.Context) (*domain.Project, error) {
				return api.Get(ctx, d.ProjectID)
			},
			Status: func(pr *domain.Project) string { return pr.Status },
			Target: domain.StatusRunning,
			Done: func(prev string, cur *domain.Project) bool {
				return domain.StatusIs(cur.Status, domain.StatusRunning) &&
					!domain.StatusIs(prev, domain.StatusUploading)
			},
			OnStatus: func(prev, cur string) {
				if domain.StatusIs(cur, domain.StatusDeploying) {
					p.indicator.SetMessage(msgDeploying)
				}
			},
		}, false)
		return err
	})

	if d.ShowLogs {
		g.Go(func() error {
			p.tailLogs(logsCtx, api, d.ProjectID, sess, log)
			return nil
		})
	}

	err := g.Wait()
	sess.Finish(err)
	p.stopIndicator()
	if err != nil {
		return nil, err
	}
	return project, nil
}

// upload runs d.Upload with the upload-progress loop feeding d.Bar, or
// with the indicator showing when there is no bar.
func (p *Poller) upload(ctx context.Context, api DeployAPI, d Deploy, sess *Session, log *slog.Logger) error {
	sess.SetUploading(true)
	defer sess.SetUploading(false)

	if d.Bar == nil {
		p.indicator.Start(msgUploading)
		return d.Upload(ctx)
	}

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	var wg conc.WaitGroup
	wg.Go(func() { p.uploadProgress(progressCtx, api, d.ProjectID, sess, d.Bar, log) })

	err := d.Upload(ctx)
	sess.SetUploading(false)
	stopProgress()
	if r := wg.WaitAndRecover(); r != nil {
		log.Debug("upload progress loop panicked", "panic", r.Value)
	}
	d.Bar.Done()
	return err
}

func messageFor(status string) string {
	if domain.StatusIs(status, domain.StatusUploading) {
		return msgUploading
	}
	return msgDeploying
}

// tailLogs prints the unseen part of the first deploy log source on every
// tick while the project is deploying.
func (p *Poller) tailLogs(ctx context.Context, api DeployAPI, id string, sess *Session, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.opts.Clock.After(p.opts.Interval):
		}
		if !domain.StatusIs(sess.Status(), domain.StatusDeploying) {
			continue
		}

		sources, err := api.DeployLogs(ctx, id)
		if err != nil {
			log.Debug("deploy log fetch failed", "error", err)
			continue
		}
		if len(sources) == 0 {
			continue
		}
		if unseen := sess.Tail(sources[0].Text); unseen != "" {
			p.indicator.Println(strings.TrimSuffix(unseen, "\n"))
		}
	}
}

// uploadProgress forwards the server's upload fraction to bar until the
// upload finishes. Fetch errors are dropped and retried on the next tick.
func (p *Poller) uploadProgress(ctx context.Context, api DeployAPI, id string, sess *Session, bar progress.Bar, log *slog.Logger) {
	for sess.Uploading() {
		select {
		case <-ctx.Done():
			return
		case <-p.opts.Clock.After(p.opts.Interval):
		}
		if !sess.Uploading() {
			return
		}

		fraction, err := api.UploadProgress(ctx, id)
		if err != nil {
			log.Debug("upload progress fetch failed", "error", err)
			continue
		}
		if delta := fraction - bar.Percent(); delta > 0 {
			bar.Tick(delta)
		}
	}
}

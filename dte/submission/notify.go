package submission

import "context"

// NopRenderer returns no rendered document; hosts plug their own
// report engine through the Renderer interface.
type NopRenderer struct{}

func (NopRenderer) Render(ctx context.Context, rec *Record) ([]byte, error) {
	return nil, nil
}

// LogNotifier only logs the outcome. Useful as a default and in tests.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, rec *Record, rendered, signed []byte) error {
	if rec.Sent() {
		logger.Infof("DTE %s delivered (status=%s, mode=%s)", rec.CodigoGeneracion, rec.Status, rec.Mode)
	} else {
		logger.Infof("DTE %s outcome notified (status=%s)", rec.CodigoGeneracion, rec.Status)
	}
	return nil
}

// Package mongo connects noticeboard to MongoDB and hosts the small helpers the
// storage packages share: a retrying connector, a readiness probe, index
// provisioning for the migrate command, and error classification.
//
//	db, err := mongo.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo

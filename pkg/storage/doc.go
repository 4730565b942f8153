// Package storage reads and writes email attachments in S3-compatible object storage.
//
// Attachment paths of the form s3://<key> are resolved through S3Storage.Get,
// which the mailer's FileLoader accepts as its object reader:
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "mail",
//		AccessKey: os.Getenv("S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("S3_SECRET_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	m := mailer.New(sender, cfg, mailer.WithAttachmentLoader(mailer.FileLoader{Objects: store}))
//
// Put uploads a file under {prefix}/{uuid}/{name} and returns the key to mail.
//
// # Errors
//
// S3 errors are mapped onto ErrNotFound, ErrAccessDenied, ErrReadFailed and
// ErrUploadFailed; match them with errors.Is.
package storage

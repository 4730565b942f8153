// Package content formats message bodies and resolves content objects by id.
//
// The default pipeline mirrors the formatting a CMS applies to post bodies:
//
//	p := content.Default(
//		content.WithShortcodes(content.NewShortcodes().Add("year", yearHandler)),
//	)
//	html := p.Process(ctx, "Hello -- \"world\"...\n\n[year]")
//
// Steps run in this order: Texturize, ConvertSmilies, ConvertChars,
// AutoEmbed, Autop, Shortcodes.Unautop and Shortcodes.Do. Each step is
// exported and can be composed into a custom Pipeline with New.
//
// Sources resolve content object ids:
//
//	src := content.NewCachedSource(
//		content.NewPostgresSource(pool, content.WithTable("cms.posts")),
//		content.NewRedisStore(rdb, ""),
//		10*time.Minute,
//	)
package content

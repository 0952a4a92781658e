// Package resumeform is a dynamic form engine for a resume builder. A
// catalog of field schemas per resume type drives a state store, a pure
// validator, a widget dispatcher and a submission pipeline that talks to a
// remote generation service.
//
// Typical use:
//
//	svc, err := resumeform.NewHTTPService("https://api.example.com/api",
//		resumeform.WithToken(token))
//	sess, err := resumeform.NewSession(svc)
//	_ = sess.SelectType(resumeform.TypeFresher)
//	_ = sess.SetScalar(resumeform.FieldPath("personalInfo.fullName"), "Ada")
//	_ = sess.AddArrayItem(resumeform.FieldPath("languages"))
//	if path, ok := sess.Path("languages.0.name"); ok {
//		_ = sess.SetScalar(path, "English")
//	}
//	html, err := resumeform.RenderHTML(ctx, sess, resumeform.RenderOptions{})
//	result, err := sess.Submit(ctx)
package resumeform

// Package browser provisions and drives the real browsers that Trackora UI
// tests run against.
//
// A Launcher owns the Playwright driver process. Each test opens its own
// Session through the Launcher and closes it in teardown; sessions are
// never shared between tests.
//
// # Launch profile
//
// Every session is launched with transport security relaxed so the suite
// can target test environments with self-signed certificates:
//
//   - HTTPS errors are ignored at the context level
//   - Chromium additionally disables the password manager and credential
//     service, accepts insecure localhost and treats the base URL origin as
//     a secure origin
//   - Firefox disables saved-login prompts
//
// Private sessions get a fresh isolated context (no cookies, cache or
// storage carried over). Non-private sessions reuse a persistent profile
// directory so cache survives between sessions.
//
// # Synchronization
//
// Session implements wait.Surface, so every session carries a wait.Engine
// configured with the session's implicit wait. Elements returned by Find
// map Playwright's "intercepts pointer events" failures onto
// wait.ErrIntercepted, which is what lets the engine retry a click through
// a direct DOM dispatch.
//
// # Dialogs
//
// JavaScript dialogs are accepted as soon as they open and their message is
// queued. AwaitDialog reads the queue with a grace period, which is how the
// post-login welcome alert is handled.
//
// # Example
//
//	launcher := browser.NewLauncher()
//	if err := launcher.Initialize(false); err != nil {
//		return err
//	}
//	defer launcher.Shutdown()
//
//	session, err := launcher.Open(browser.Options{
//		Kind:    browser.Chromium,
//		BaseURL: "https://qa.trackora.example/",
//		Private: true,
//	})
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	if _, err := session.Wait().Click(wait.CSS("button[type='submit']")); err != nil {
//		return err
//	}
package browser

package auth

// RequireIdentity fails with ErrUnauthenticated when no identity was resolved.
func RequireIdentity(id *Identity) error {
	if id == nil {
		return ErrUnauthenticated
	}

	return nil
}

// RequirePermission fails with Forbidden unless the identity's snapshot holds
// the wildcard or tag.
func RequirePermission(id *Identity, tag string) error {
	if err := RequireIdentity(id); err != nil {
		return err
	}

	if id.Super || id.Can(tag) {
		return nil
	}

	e := *ErrForbidden
	e.Permission = tag

	return &e
}

// RequireAnyPermission fails with Forbidden unless at least one tag is held.
// The reported permission is the first tag.
func RequireAnyPermission(id *Identity, tags ...string) error {
	if err := RequireIdentity(id); err != nil {
		return err
	}

	if id.Super {
		return nil
	}

	for _, tag := range tags {
		if id.Can(tag) {
			return nil
		}
	}

	e := *ErrForbidden
	if len(tags) > 0 {
		e.Permission = tags[0]
	}

	return &e
}

// RequireMinLevel fails with InsufficientLevel when the identity's level is
// below threshold.
func RequireMinLevel(id *Identity, threshold int) error {
	if err := RequireIdentity(id); err != nil {
		return err
	}

	if id.Super || id.Level >= threshold {
		return nil
	}

	e := *ErrInsufficientLevel
	e.RequiredLevel = threshold
	e.ActualLevel = id.Level

	return &e
}

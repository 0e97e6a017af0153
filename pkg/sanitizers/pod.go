package sanitizers

type podSanitizer struct{}

func newPodSanitizer() Sanitizer {
	return podSanitizer{}
}

func (s podSanitizer) Sanitize(in map[string]interface{}) (map[string]interface{}, error) {
	in, err := newDefaultSanitizer().Sanitize(in)
	if err != nil {
		return nil, err
	}

	spec, ok := in["spec"].(map[string]interface{})
	if !ok {
		// pod templates carry only metadata in some controllers
		return in, nil
	}
	delete(spec, "nodeName")
	delete(spec, "deprecatedServiceAccount")
	in["spec"] = spec
	return in, nil
}

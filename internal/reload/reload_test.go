package reload

import "testing"

func TestRunUnknownAppIsNoop(t *testing.T) {
	Run("some-app-not-in-registry")
}

func TestRunSkipsWhenPrerequisitesUnmet(t *testing.T) {
	Registry["test-fixture"] = Command{
		App:                "test-fixture",
		Argv:               []string{"false"},
		CheckCommandExists: "definitely-not-a-real-binary-xyz",
	}
	defer delete(Registry, "test-fixture")

	Run("test-fixture")
}

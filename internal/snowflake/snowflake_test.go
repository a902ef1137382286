package snowflake

import "testing"

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(0)
	if err != nil {
		t.Error(err)
	}
}

func TestNewGeneratorWorkerOverflow(t *testing.T) {
	_, err := NewGenerator(1 << 10)
	if err == nil {
		t.Error("Expected error for worker ID above maximum, but there wasn't")
	}
}

func TestGenerate(t *testing.T) {
	gen, err := NewGenerator(3)
	if err != nil {
		t.Fatal(err)
	}

	id, err := gen.Generate()
	if err != nil {
		t.Error(err)
	}

	extracted := Extract(id)
	if extracted.WorkerID != 3 {
		t.Errorf("Expected worker ID 3, got %d", extracted.WorkerID)
	}
}

func TestGenerateIncrementOverflow(t *testing.T) {
	gen, err := NewGenerator(0)
	if err != nil {
		t.Fatal(err)
	}

	for range 100000 {
		_, err := gen.Generate()
		if err != nil {
			return
		}
	}
	t.Error("Expected increment overflow, but there wasn't")
}

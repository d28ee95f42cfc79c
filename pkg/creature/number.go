package creature

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// Number is the num identifier of a record. The sample dataset stores it as a
// zero padded string ("001") but numeric documents are accepted too.
type Number string

func (n Number) String() string {
	return string(n)
}

func (n Number) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(n))
}

func (n *Number) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	value := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.String:
		*n = Number(value.StringValue())
	case bsontype.Int32:
		*n = Number(strconv.FormatInt(int64(value.Int32()), 10))
	case bsontype.Int64:
		*n = Number(strconv.FormatInt(value.Int64(), 10))
	case bsontype.Double:
		*n = Number(strconv.FormatFloat(value.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*n = ""
	default:
		return fmt.Errorf("cannot decode %s into creature.Number", t)
	}

	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("cannot decode %s into creature.Number: %w", data, err)
	}
	*n = Number(number.String())

	return nil
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: num must be a scalar", value.Line)
	}

	if value.Tag == "!!null" {
		*n = ""
	} else {
		*n = Number(value.Value)
	}

	return nil
}

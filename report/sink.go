/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/viper"

	chainsawfs "bennypowers.dev/chainsaw/internal/fs"
)

// WriteJSON marshals v (a Trace, Why, or Diff) to its JSON shape and writes
// it to viper's "output" flag path if set, otherwise to w.
func WriteJSON(osfs chainsawfs.FileSystem, w io.Writer, v any) error {
	var payload any
	switch x := v.(type) {
	case Trace:
		payload = x.toJSON()
	case Why:
		payload = x.toJSON()
	case Diff:
		payload = x.toJSON()
	default:
		payload = v
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')

	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, data, 0644)
	}
	_, err = w.Write(data)
	return err
}

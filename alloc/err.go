package alloc

import (
	"github.com/ezrec/pbrain/translate"
)

var f = translate.From

type ErrPolicy string

func (err ErrPolicy) Error() string {
	return f("allocation policy '%v' unknown", string(err))
}

package recovery

/*
ExpandTensorGrid flattens a tensor grid given per direction into an unstructured
point list, the first direction running fastest:

	in[0]  = {0,1,2}
	in[1]  = {2,3,5}
	out[0] = {0,1,2,0,1,2,0,1,2}
	out[1] = {2,2,2,3,3,3,5,5,5}
*/
func ExpandTensorGrid(in [2][]float64) (out [2][]float64) {
	var (
		m, n = len(in[0]), len(in[1])
		ip   int
	)
	out[0] = make([]float64, m*n)
	out[1] = make([]float64, m*n)
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			out[0][ip] = in[0][i]
			out[1][ip] = in[1][j]
			ip++
		}
	}
	return
}
